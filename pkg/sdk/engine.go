// Package sdk assembles the intelligence engine from configuration: the
// subgraph client as the primary source, the chain scanner as the event
// fallback, the basename resolver for enrichment, and the intel and
// reputation services on top. Callers embed the Engine; no HTTP surface
// is provided here.
package sdk

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/agentmesh/backend/internal/chain"
	"github.com/agentmesh/backend/internal/config"
	"github.com/agentmesh/backend/internal/intel"
	"github.com/agentmesh/backend/internal/names"
	"github.com/agentmesh/backend/internal/reputation"
	"github.com/agentmesh/backend/internal/subgraph"
)

// Engine is the assembled query surface. Intel and Reputation are always
// set; Scanner and Names are nil when the corresponding source is not
// configured.
type Engine struct {
	Config     *config.Config
	Intel      *intel.Service
	Reputation *reputation.Composer
	Scanner    *chain.Scanner
	Names      *names.Resolver
}

// Load reads configuration from the given path (plus environment
// overrides) and assembles an engine.
func Load(path string) (*Engine, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// New assembles an engine from an explicit configuration. At least one
// data source must be configured: a subgraph URL, or an RPC URL with a
// contract address.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var indexed intel.IndexedSource
	if cfg.Sources.SubgraphURL != "" {
		indexed = subgraph.NewClient(cfg.Sources.SubgraphURL)
	}

	var (
		scanner  *chain.Scanner
		resolver *names.Resolver
	)
	if cfg.Sources.RPCURL != "" {
		client, err := ethclient.Dial(cfg.Sources.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("dial rpc: %w", err)
		}
		if cfg.Sources.ContractAddress != "" {
			scanner, err = chain.NewScanner(client, common.HexToAddress(cfg.Sources.ContractAddress), cfg.Scanner)
			if err != nil {
				return nil, err
			}
		}
		if cfg.Sources.RegistryAddress != "" {
			backend, err := names.NewEthBackend(client, common.HexToAddress(cfg.Sources.RegistryAddress))
			if err != nil {
				return nil, err
			}
			resolver = names.NewResolver(backend, cfg.Names)
		}
	}

	if indexed == nil && scanner == nil {
		return nil, errors.New("no data source configured: set subgraph_url, or rpc_url with contract_address")
	}

	var events intel.EventSource
	if scanner != nil {
		events = scanner
	}
	var nameSource intel.NameSource
	if resolver != nil {
		nameSource = resolver
	}

	svc := intel.NewService(indexed, events, nameSource, cfg)

	var repNames reputation.NameSource
	if resolver != nil {
		repNames = resolver
	}

	return &Engine{
		Config:     cfg,
		Intel:      svc,
		Reputation: reputation.NewComposer(svc, repNames, cfg),
		Scanner:    scanner,
		Names:      resolver,
	}, nil
}

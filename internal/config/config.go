// Package config loads the engine configuration from a YAML file with
// environment-variable overrides for deployment secrets (RPC endpoints,
// subgraph URLs). A .env file is honoured when present.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Sources  SourcesConfig  `yaml:"sources"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	PageRank PageRankConfig `yaml:"pagerank"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Names    NamesConfig    `yaml:"names"`
}

// SourcesConfig wires the two data channels and the name registry.
type SourcesConfig struct {
	SubgraphURL     string `yaml:"subgraph_url"`
	RPCURL          string `yaml:"rpc_url"`
	ContractAddress string `yaml:"contract_address"`
	RegistryAddress string `yaml:"registry_address"`
}

type ScannerConfig struct {
	MaxEvents     int    `yaml:"max_events"`
	MaxBlockRange uint64 `yaml:"max_block_range"`
	// FromBlock of -1 scans the tail TailBlocks of the chain.
	FromBlock  int64  `yaml:"from_block"`
	TailBlocks uint64 `yaml:"tail_blocks"`
}

type PageRankConfig struct {
	MaxIterations int           `yaml:"max_iterations"`
	DampingFactor float64       `yaml:"damping_factor"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
}

type ScoringConfig struct {
	// MinPageRankForInfluence of 0 means "half the uniform score",
	// i.e. 0.5/N for a population of N.
	MinPageRankForInfluence float64 `yaml:"min_pagerank_for_influence"`
	TrustThreshold          float64 `yaml:"trust_threshold"`
	QualityScalingFactor    float64 `yaml:"quality_scaling_factor"`
}

type NamesConfig struct {
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	MaxCacheSize int           `yaml:"max_cache_size"`
}

// Default returns the documented defaults. Load starts from these, so a
// partial YAML file only overrides what it names.
func Default() *Config {
	return &Config{
		Scanner: ScannerConfig{
			MaxEvents:     10000,
			MaxBlockRange: 9999, // the RPC caps eth_getLogs at 10,000 blocks
			FromBlock:     -1,
			TailBlocks:    50000,
		},
		PageRank: PageRankConfig{
			MaxIterations: 20,
			DampingFactor: 0.85,
			CacheTTL:      5 * time.Minute,
		},
		Scoring: ScoringConfig{
			TrustThreshold:       0.5,
			QualityScalingFactor: 500,
		},
		Names: NamesConfig{
			CacheTTL:     5 * time.Minute,
			MaxCacheSize: 1000,
		},
	}
}

// Load reads a YAML config file on top of the defaults, then applies
// environment overrides. A missing file is not an error; env-only
// deployments are common.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else {
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
				return nil, err
			}
		}
	}

	if v := os.Getenv("MESH_SUBGRAPH_URL"); v != "" {
		cfg.Sources.SubgraphURL = v
	}
	if v := os.Getenv("MESH_RPC_URL"); v != "" {
		cfg.Sources.RPCURL = v
	}
	if v := os.Getenv("MESH_CONTRACT_ADDRESS"); v != "" {
		cfg.Sources.ContractAddress = v
	}
	if v := os.Getenv("MESH_REGISTRY_ADDRESS"); v != "" {
		cfg.Sources.RegistryAddress = v
	}

	return cfg, nil
}

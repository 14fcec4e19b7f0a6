package names

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/agentmesh/backend/pkg/model"
)

const registryContractABI = `[
  {"type":"function","name":"resolver","stateMutability":"view",
   "inputs":[{"name":"node","type":"bytes32"}],
   "outputs":[{"name":"","type":"address"}]}
]`

const resolverContractABI = `[
  {"type":"function","name":"addr","stateMutability":"view",
   "inputs":[{"name":"node","type":"bytes32"}],
   "outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"name","stateMutability":"view",
   "inputs":[{"name":"node","type":"bytes32"}],
   "outputs":[{"name":"","type":"string"}]}
]`

// EthBackend implements Backend over JSON-RPC eth_call.
type EthBackend struct {
	caller      bind.ContractCaller
	registry    *bind.BoundContract
	resolverABI abi.ABI
}

// NewEthBackend creates a backend bound to the registry at the given
// address. caller is typically an *ethclient.Client.
func NewEthBackend(caller bind.ContractCaller, registry common.Address) (*EthBackend, error) {
	regABI, err := abi.JSON(strings.NewReader(registryContractABI))
	if err != nil {
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}
	resABI, err := abi.JSON(strings.NewReader(resolverContractABI))
	if err != nil {
		return nil, fmt.Errorf("parse resolver abi: %w", err)
	}
	return &EthBackend{
		caller:      caller,
		registry:    bind.NewBoundContract(registry, regABI, caller, nil, nil),
		resolverABI: resABI,
	}, nil
}

func (b *EthBackend) ResolverAddr(ctx context.Context, node common.Hash) (common.Address, error) {
	var out []interface{}
	err := b.registry.Call(&bind.CallOpts{Context: ctx}, &out, "resolver", [32]byte(node))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: registry resolver(): %v", model.ErrTransport, err)
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (b *EthBackend) Addr(ctx context.Context, resolver common.Address, node common.Hash) (common.Address, error) {
	contract := bind.NewBoundContract(resolver, b.resolverABI, b.caller, nil, nil)
	var out []interface{}
	err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "addr", [32]byte(node))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: resolver addr(): %v", model.ErrTransport, err)
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (b *EthBackend) Name(ctx context.Context, resolver common.Address, node common.Hash) (string, error) {
	contract := bind.NewBoundContract(resolver, b.resolverABI, b.caller, nil, nil)
	var out []interface{}
	err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "name", [32]byte(node))
	if err != nil {
		return "", fmt.Errorf("%w: resolver name(): %v", model.ErrTransport, err)
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// Package names resolves basenames (<label>.base.eth) to addresses and
// back through a registry/resolver contract pair.
//
// Reverse resolution is only trusted after forward verification: the
// candidate name returned by the reverse record must resolve back to the
// original address, otherwise whoever controls the reverse record could
// inject an arbitrary display name.
//
// Both directions are cached with a TTL; at capacity the oldest-inserted
// entry is evicted first.
package names

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/agentmesh/backend/internal/config"
	"github.com/agentmesh/backend/pkg/model"
)

// batchConcurrency bounds the fan-out of batch lookups.
const batchConcurrency = 8

// Backend is the two-step registry/resolver lookup surface. EthBackend
// implements it over JSON-RPC; tests substitute an in-memory registry.
type Backend interface {
	// ResolverAddr returns the resolver contract responsible for a node,
	// or the zero address when none is set.
	ResolverAddr(ctx context.Context, node common.Hash) (common.Address, error)
	// Addr performs the forward lookup on a resolver.
	Addr(ctx context.Context, resolver common.Address, node common.Hash) (common.Address, error)
	// Name performs the reverse lookup on a resolver.
	Name(ctx context.Context, resolver common.Address, node common.Hash) (string, error)
}

// CacheStats exposes hit/miss counters for observability.
type CacheStats struct {
	ForwardHits    int64 `json:"forwardHits"`
	ForwardMisses  int64 `json:"forwardMisses"`
	ReverseHits    int64 `json:"reverseHits"`
	ReverseMisses  int64 `json:"reverseMisses"`
	ForwardEntries int   `json:"forwardEntries"`
	ReverseEntries int   `json:"reverseEntries"`
}

// Resolver performs forward and reverse basename resolution.
type Resolver struct {
	backend Backend
	forward *ttlCache
	reverse *ttlCache
	log     *slog.Logger
}

// NewResolver creates a resolver over the given backend. Zero config
// fields fall back to the documented defaults.
func NewResolver(backend Backend, cfg config.NamesConfig) *Resolver {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = config.Default().Names.CacheTTL
	}
	if cfg.MaxCacheSize == 0 {
		cfg.MaxCacheSize = config.Default().Names.MaxCacheSize
	}
	return &Resolver{
		backend: backend,
		forward: newTTLCache("forward", cfg.CacheTTL, cfg.MaxCacheSize),
		reverse: newTTLCache("reverse", cfg.CacheTTL, cfg.MaxCacheSize),
		log:     slog.Default().With("component", "names"),
	}
}

// ResolveName returns the address a basename points at, or "" when the
// name is unregistered. A malformed name is invalid input.
func (r *Resolver) ResolveName(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !model.IsBasename(name) {
		return "", model.InvalidInputf("malformed basename %q", name)
	}

	if addr, ok := r.forward.get(name); ok {
		return addr, nil
	}

	node := Namehash(name)
	resolver, err := r.backend.ResolverAddr(ctx, node)
	if err != nil {
		return "", err
	}
	if resolver == (common.Address{}) {
		return "", nil
	}

	addr, err := r.backend.Addr(ctx, resolver, node)
	if err != nil {
		return "", err
	}
	if addr == (common.Address{}) {
		return "", nil
	}

	resolved := model.NormalizeAddress(addr.Hex())
	r.forward.set(name, resolved)
	return resolved, nil
}

// LookupAddress returns the verified basename for an address, or ""
// when the address has no (verifiable) reverse record.
func (r *Resolver) LookupAddress(ctx context.Context, addr string) (string, error) {
	if !model.IsAddress(addr) {
		return "", model.InvalidInputf("malformed address %q", addr)
	}
	addr = model.NormalizeAddress(addr)

	if name, ok := r.reverse.get(addr); ok {
		return name, nil
	}

	node := ReverseNode(addr)
	resolver, err := r.backend.ResolverAddr(ctx, node)
	if err != nil {
		return "", err
	}
	if resolver == (common.Address{}) {
		return "", nil
	}

	candidate, err := r.backend.Name(ctx, resolver, node)
	if err != nil {
		return "", err
	}
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	if candidate == "" || !model.IsBasename(candidate) {
		return "", nil
	}

	// Forward verification: the candidate must resolve back to addr.
	forward, err := r.ResolveName(ctx, candidate)
	if err != nil {
		return "", err
	}
	if forward != addr {
		r.log.Warn("reverse record failed forward verification", "address", addr, "candidate", candidate)
		return "", nil
	}

	r.reverse.set(addr, candidate)
	return candidate, nil
}

// ResolveNameOrAddress accepts either form and returns a canonical
// address. An unregistered name resolves to "".
func (r *Resolver) ResolveNameOrAddress(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if model.IsAddress(input) {
		return model.NormalizeAddress(input), nil
	}
	if model.IsBasename(input) {
		return r.ResolveName(ctx, input)
	}
	return "", model.InvalidInputf("neither address nor basename: %q", input)
}

// VerifyOwnership reports whether name forward-resolves to addr.
func (r *Resolver) VerifyOwnership(ctx context.Context, name, addr string) (bool, error) {
	resolved, err := r.ResolveName(ctx, name)
	if err != nil {
		return false, err
	}
	return resolved != "" && resolved == model.NormalizeAddress(addr), nil
}

// IsRegistered reports whether a basename has a forward record.
func (r *Resolver) IsRegistered(ctx context.Context, name string) (bool, error) {
	resolved, err := r.ResolveName(ctx, name)
	if err != nil {
		return false, err
	}
	return resolved != "", nil
}

// ResolveNames resolves a batch of names; unresolvable entries are
// simply absent from the result.
func (r *Resolver) ResolveNames(ctx context.Context, batch []string) map[string]string {
	return r.fanOut(ctx, batch, func(ctx context.Context, name string) (string, error) {
		return r.ResolveName(ctx, name)
	})
}

// LookupAddresses reverse-resolves a batch of addresses; entries without
// a verified name are absent from the result. Individual failures never
// fail the batch.
func (r *Resolver) LookupAddresses(ctx context.Context, addrs []string) map[string]string {
	return r.fanOut(ctx, addrs, func(ctx context.Context, addr string) (string, error) {
		return r.LookupAddress(ctx, addr)
	})
}

func (r *Resolver) fanOut(ctx context.Context, keys []string, lookup func(context.Context, string) (string, error)) map[string]string {
	type result struct{ key, value string }

	seen := make(map[string]struct{}, len(keys))
	unique := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if _, dup := seen[k]; dup || k == "" {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, k)
	}

	results := make(chan result, len(unique))
	sem := make(chan struct{}, batchConcurrency)
	var wg sync.WaitGroup

	for _, key := range unique {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			value, err := lookup(ctx, key)
			if err != nil {
				r.log.Debug("batch lookup failed", "key", key, "err", err)
				return
			}
			if value != "" {
				results <- result{key, value}
			}
		}(key)
	}
	wg.Wait()
	close(results)

	out := make(map[string]string, len(unique))
	for res := range results {
		out[res.key] = res.value
	}
	return out
}

// CacheStats returns hit/miss counters and current sizes.
func (r *Resolver) CacheStats() CacheStats {
	fh, fm := r.forward.stats()
	rh, rm := r.reverse.stats()
	return CacheStats{
		ForwardHits:    fh,
		ForwardMisses:  fm,
		ReverseHits:    rh,
		ReverseMisses:  rm,
		ForwardEntries: r.forward.len(),
		ReverseEntries: r.reverse.len(),
	}
}

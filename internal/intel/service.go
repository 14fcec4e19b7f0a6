// Package intel is the intelligence query surface of the engine: expert
// rankings, trust paths, bridge agents, community health and trending,
// collaboration networks, and citation analytics.
//
// Every query follows one template: attempt the indexed source when one
// is configured, quietly fall back to raw event scans on transport or
// upstream errors, and finally enrich results with basenames when a name
// source is wired. When neither source yields data the result is a
// well-typed empty value, never an error.
package intel

import (
	"context"
	"log/slog"
	"time"

	"github.com/agentmesh/backend/internal/chain"
	"github.com/agentmesh/backend/internal/config"
	"github.com/agentmesh/backend/pkg/model"
)

// IndexedSource is the slice of the subgraph client the router needs.
type IndexedSource interface {
	Query(ctx context.Context, query string, variables map[string]any, out any) error
	IsHealthy(ctx context.Context) bool
}

// EventSource is the slice of the chain scanner the fallback path needs.
type EventSource interface {
	ContentPublished(ctx context.Context) ([]chain.ContentPublishedEvent, error)
	AttestationsCreated(ctx context.Context) ([]chain.AttestationCreatedEvent, error)
	AttestationsRevoked(ctx context.Context) ([]chain.AttestationRevokedEvent, error)
	VotesCast(ctx context.Context) ([]chain.VoteCastEvent, error)
	Follows(ctx context.Context) ([]chain.FollowedEvent, error)
	Registrations(ctx context.Context) ([]chain.RegisteredEvent, error)
	BlockTime(ctx context.Context, block uint64) (int64, error)
}

// NameSource is the slice of the resolver the enrichment layer needs.
type NameSource interface {
	ResolveNameOrAddress(ctx context.Context, input string) (string, error)
	LookupAddresses(ctx context.Context, addrs []string) map[string]string
}

// Service answers intelligence queries over the two data sources. Any of
// the sources may be nil: a nil indexed source routes every query
// straight to events, a nil event source makes the fallback an empty
// result, and a nil name source disables enrichment.
type Service struct {
	indexed IndexedSource
	events  EventSource
	names   NameSource
	cfg     *config.Config
	log     *slog.Logger
	breaker *sourceBreaker
}

// NewService wires a query service over the given sources.
func NewService(indexed IndexedSource, events EventSource, names NameSource, cfg *config.Config) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Service{
		indexed: indexed,
		events:  events,
		names:   names,
		cfg:     cfg,
		log:     slog.Default().With("component", "intel"),
		breaker: newSourceBreaker(3, 30*time.Second),
	}
}

// IsHealthy probes the indexed source. Without one the engine is running
// on events alone, which still counts as healthy.
func (s *Service) IsHealthy(ctx context.Context) bool {
	if s.indexed == nil {
		return s.events != nil
	}
	return s.indexed.IsHealthy(ctx)
}

func checkLimit(limit int) error {
	if limit <= 0 {
		return model.InvalidInputf("limit must be positive, got %d", limit)
	}
	return nil
}

// resolveAgent accepts an address or a basename and returns the
// canonical address.
func (s *Service) resolveAgent(ctx context.Context, input string) (string, error) {
	if model.IsAddress(input) {
		return model.NormalizeAddress(input), nil
	}
	if s.names == nil {
		return "", model.InvalidInputf("not an address: %q", input)
	}
	addr, err := s.names.ResolveNameOrAddress(ctx, input)
	if err != nil {
		return "", err
	}
	if addr == "" {
		return "", model.InvalidInputf("name %q does not resolve", input)
	}
	return addr, nil
}

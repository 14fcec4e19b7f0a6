package intel

import (
	"context"

	"github.com/google/uuid"

	"github.com/agentmesh/backend/pkg/model"
)

// runQuery is the primary/fallback router shared by every query. The
// indexed path is attempted when a source is configured and the breaker
// is closed; transport, upstream, and malformed-response errors reroute
// to the event fallback, everything else (invalid input, cancellation)
// surfaces. A failing fallback degrades to the zero value of T, the
// well-typed empty result.
func runQuery[T any](ctx context.Context, s *Service, name string,
	primary func(context.Context) (T, error),
	fallback func(context.Context) (T, error),
) (T, error) {
	var zero T
	log := s.log.With("query", name, "correlation_id", uuid.NewString())

	if s.indexed != nil && primary != nil {
		if s.breaker.allow() {
			out, err := primary(ctx)
			if err == nil {
				s.breaker.success()
				return out, nil
			}
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			if !model.IsRetryable(err) {
				return zero, err
			}
			s.breaker.failure()
			queryMetrics.fallbacks.WithLabelValues(name).Inc()
			log.Warn("indexed path failed, falling back to events", "err", err)
		} else {
			queryMetrics.fallbacks.WithLabelValues(name).Inc()
			log.Debug("indexed source breaker open, using events")
		}
	}

	if fallback == nil || s.events == nil {
		return zero, nil
	}
	out, err := fallback(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !model.IsRetryable(err) {
			return zero, err
		}
		log.Warn("event fallback failed, returning empty result", "err", err)
		return zero, nil
	}
	return out, nil
}

package querycache

import (
	"context"
	"log/slog"
	"time"

	"github.com/dejobratic/shopdash/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// MutationStatus is the externally visible state of one mutation run.
type MutationStatus int

const (
	MutationPending MutationStatus = iota
	MutationSucceeded
	MutationFailed
)

func (s MutationStatus) String() string {
	switch s {
	case MutationPending:
		return "pending"
	case MutationSucceeded:
		return "succeeded"
	case MutationFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MutationSpec describes one write: the operation itself, the query keys it
// invalidates on success, and an optional status observer.
type MutationSpec struct {
	Name string
	Op   func(ctx context.Context) (any, error)
	// Keys names the query keys affected by a successful write; it receives
	// the operation result so detail keys can be derived from it.
	Keys     func(result any) []Key
	OnStatus func(MutationStatus)
}

// Mutator runs repository writes under the confirm-then-invalidate contract:
// the write must succeed before any cached state is touched, a failed write
// leaves every cache entry as it was, and nothing is retried automatically.
type Mutator struct {
	cache   *Cache
	logger  *slog.Logger
	metrics *Metrics
}

func NewMutator(cache *Cache, logger *slog.Logger, metrics *Metrics) *Mutator {
	return &Mutator{
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

// Do executes the mutation and, on success, invalidates its affected keys.
// The error of a failed operation is surfaced unchanged.
func (m *Mutator) Do(ctx context.Context, spec MutationSpec) (any, error) {
	ctx, span := telemetry.StartSpan(ctx, "Mutation."+spec.Name)
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("mutation", spec.Name))

	notify(spec.OnStatus, MutationPending)

	start := time.Now()
	result, err := spec.Op(ctx)
	duration := time.Since(start).Seconds()

	if err != nil {
		notify(spec.OnStatus, MutationFailed)
		m.metrics.RecordMutation(ctx, spec.Name, duration, false)
		if m.logger != nil {
			m.logger.WarnContext(ctx, "mutation failed", "mutation", spec.Name, "error", err)
		}
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	notify(spec.OnStatus, MutationSucceeded)
	m.metrics.RecordMutation(ctx, spec.Name, duration, true)

	if spec.Keys != nil {
		keys := spec.Keys(result)
		m.cache.Invalidate(keys...)
		telemetry.AddSpanAttributes(span, attribute.Int("invalidated.count", len(keys)))
	}

	telemetry.SetSpanSuccess(span)
	return result, nil
}

func notify(fn func(MutationStatus), status MutationStatus) {
	if fn != nil {
		fn(status)
	}
}

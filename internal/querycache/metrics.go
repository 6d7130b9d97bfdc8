package querycache

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	reads            metric.Int64Counter
	dedupJoins       metric.Int64Counter
	refetches        metric.Int64Counter
	invalidations    metric.Int64Counter
	mutationDuration metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.reads, err = meter.Int64Counter(
		"querycache_reads_total",
		metric.WithDescription("Total cache reads by outcome (hit, stale, miss)"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create querycache_reads counter: %w", err)
	}

	m.dedupJoins, err = meter.Int64Counter(
		"querycache_dedup_joins_total",
		metric.WithDescription("Total reads that joined an in-flight fetch"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create querycache_dedup_joins counter: %w", err)
	}

	m.refetches, err = meter.Int64Counter(
		"querycache_refetches_total",
		metric.WithDescription("Total background revalidation fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create querycache_refetches counter: %w", err)
	}

	m.invalidations, err = meter.Int64Counter(
		"querycache_invalidations_total",
		metric.WithDescription("Total query key invalidations"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create querycache_invalidations counter: %w", err)
	}

	m.mutationDuration, err = meter.Float64Histogram(
		"mutation_duration_seconds",
		metric.WithDescription("Duration of orchestrated mutations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create mutation_duration histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordRead(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.reads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordDedup(ctx context.Context) {
	if m == nil {
		return
	}
	m.dedupJoins.Add(ctx, 1)
}

func (m *Metrics) RecordRefetch(ctx context.Context) {
	if m == nil {
		return
	}
	m.refetches.Add(ctx, 1)
}

func (m *Metrics) RecordInvalidation(ctx context.Context) {
	if m == nil {
		return
	}
	m.invalidations.Add(ctx, 1)
}

func (m *Metrics) RecordMutation(ctx context.Context, name string, durationSeconds float64, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.mutationDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("mutation", name),
		attribute.String("status", status),
	))
}

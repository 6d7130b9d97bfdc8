package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	repoOpDuration metric.Float64Histogram
	entityWrites   metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.repoOpDuration, err = meter.Float64Histogram(
		"catalog_repository_op_duration_seconds",
		metric.WithDescription("Duration of catalog repository operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create catalog_repository_op_duration histogram: %w", err)
	}

	m.entityWrites, err = meter.Int64Counter(
		"catalog_entity_writes_total",
		metric.WithDescription("Total number of catalog entity writes"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create catalog_entity_writes counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordRepositoryOp(ctx context.Context, entity, operation string, durationSeconds float64) {
	m.repoOpDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
	))
}

func (m *Metrics) RecordEntityWrite(ctx context.Context, entity, operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.entityWrites.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

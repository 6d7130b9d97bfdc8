package kvstore

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	opDuration metric.Float64Histogram
	opFailures metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.opDuration, err = meter.Float64Histogram(
		"store_slot_op_duration_seconds",
		metric.WithDescription("Duration of entity store slot operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create store_slot_op_duration histogram: %w", err)
	}

	m.opFailures, err = meter.Int64Counter(
		"store_slot_op_failures_total",
		metric.WithDescription("Total number of failed entity store slot operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create store_slot_op_failures counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOp(ctx context.Context, operation, collection string, durationSeconds float64, err error) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("collection", collection),
	)
	m.opDuration.Record(ctx, durationSeconds, attrs)
	if err != nil {
		m.opFailures.Add(ctx, 1, attrs)
	}
}

// InstrumentedStore decorates a Store with operation metrics.
type InstrumentedStore struct {
	inner   Store
	metrics *Metrics
}

func NewInstrumentedStore(inner Store, metrics *Metrics) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, metrics: metrics}
}

func (s *InstrumentedStore) Load(ctx context.Context, collection string) ([]byte, bool, error) {
	start := time.Now()
	payload, ok, err := s.inner.Load(ctx, collection)
	s.metrics.RecordOp(ctx, "load", collection, time.Since(start).Seconds(), err)
	return payload, ok, err
}

func (s *InstrumentedStore) Save(ctx context.Context, collection string, payload []byte) error {
	start := time.Now()
	err := s.inner.Save(ctx, collection, payload)
	s.metrics.RecordOp(ctx, "save", collection, time.Since(start).Seconds(), err)
	return err
}

package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func testConfig() Config {
	return Config{
		ServiceName:    "shopdash-test",
		ServiceVersion: "0.0.1",
		Environment:    "test",
		SampleRate:     1.0,
	}
}

// initTelemetry initializes telemetry with no-op exporters and registers
// shutdown as test cleanup.
func initTelemetry(t *testing.T, tracing, metrics bool) *Telemetry {
	t.Helper()

	cfg := testConfig()
	cfg.EnableTracing = tracing
	cfg.EnableMetrics = metrics

	tel, err := Initialize(context.Background(), cfg,
		WithTraceExporter(NewNoopTraceExporter()),
		WithMetricExporter(NewNoopMetricExporter()),
	)
	if err != nil {
		t.Fatalf("initialize telemetry: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			t.Errorf("shutdown failed: %v", err)
		}
	})
	return tel
}

// setupRecordingTracer installs an in-memory tracer provider so tests can
// inspect exported spans.
func setupRecordingTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exp := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exp))
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(nil)
	})
	return exp
}

package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestStartSpan(t *testing.T) {
	exp := setupRecordingTracer(t)

	ctx, span := StartSpan(context.Background(), "Repository.List")
	span.End()

	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "Repository.List" {
		t.Errorf("expected span name Repository.List, got %s", spans[0].Name)
	}
	if TraceID(ctx) == "" {
		t.Error("expected the returned context to carry a trace id")
	}
}

func TestSpanHelpers(t *testing.T) {
	t.Run("attributes and events land on the span", func(t *testing.T) {
		exp := setupRecordingTracer(t)

		_, span := StartSpan(context.Background(), "Mutation.create_product")
		AddSpanAttributes(span, attribute.String("mutation", "create_product"))
		AddSpanEvent(span, "cache.invalidated", attribute.Int("keys", 2))
		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}

		foundAttr := false
		for _, attr := range spans[0].Attributes {
			if attr.Key == "mutation" && attr.Value.AsString() == "create_product" {
				foundAttr = true
			}
		}
		if !foundAttr {
			t.Error("expected mutation attribute on the span")
		}

		if len(spans[0].Events) != 1 || spans[0].Events[0].Name != "cache.invalidated" {
			t.Errorf("expected cache.invalidated event, got %+v", spans[0].Events)
		}
	})

	t.Run("error recording sets error status", func(t *testing.T) {
		exp := setupRecordingTracer(t)

		_, span := StartSpan(context.Background(), "Repository.Create")
		RecordSpanError(span, errors.New("duplicate sku"))
		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Status.Code != codes.Error {
			t.Errorf("expected error status, got %v", spans[0].Status.Code)
		}
	})

	t.Run("nil error leaves the status unset", func(t *testing.T) {
		exp := setupRecordingTracer(t)

		_, span := StartSpan(context.Background(), "Repository.Create")
		RecordSpanError(span, nil)
		span.End()

		spans := exp.GetSpans()
		if spans[0].Status.Code != codes.Unset {
			t.Errorf("expected unset status, got %v", spans[0].Status.Code)
		}
	})

	t.Run("success sets ok status", func(t *testing.T) {
		exp := setupRecordingTracer(t)

		_, span := StartSpan(context.Background(), "Repository.Delete")
		SetSpanSuccess(span)
		span.End()

		spans := exp.GetSpans()
		if spans[0].Status.Code != codes.Ok {
			t.Errorf("expected ok status, got %v", spans[0].Status.Code)
		}
	})

	t.Run("helpers tolerate a nil span", func(t *testing.T) {
		AddSpanAttributes(nil, attribute.String("k", "v"))
		AddSpanEvent(nil, "event")
		RecordSpanError(nil, errors.New("boom"))
		SetSpanSuccess(nil)
	})
}

func TestTraceAndSpanIDs(t *testing.T) {
	t.Run("empty outside a span", func(t *testing.T) {
		ctx := context.Background()

		if id := TraceID(ctx); id != "" {
			t.Errorf("expected empty trace id, got %s", id)
		}
		if id := SpanID(ctx); id != "" {
			t.Errorf("expected empty span id, got %s", id)
		}
	})

	t.Run("populated inside a span", func(t *testing.T) {
		setupRecordingTracer(t)

		ctx, span := StartSpan(context.Background(), "Repository.List")
		defer span.End()

		if TraceID(ctx) == "" {
			t.Error("expected trace id")
		}
		if SpanID(ctx) == "" {
			t.Error("expected span id")
		}
	})
}

package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/shopdash/internal/catalog/domain"
	"github.com/dejobratic/shopdash/internal/catalog/metrics"
	"github.com/dejobratic/shopdash/internal/catalog/ports"
	"github.com/dejobratic/shopdash/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableOrderRepository struct {
	repo    ports.OrderRepository
	metrics *metrics.Metrics
}

func NewObservableOrderRepository(repo ports.OrderRepository, metrics *metrics.Metrics) *ObservableOrderRepository {
	return &ObservableOrderRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.List")
	defer span.End()

	start := time.Now()
	orders, err := r.repo.List(ctx)
	r.metrics.RecordRepositoryOp(ctx, "order", "list", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.GetByID")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("order.id", id))

	start := time.Now()
	order, err := r.repo.GetByID(ctx, id)
	r.metrics.RecordRepositoryOp(ctx, "order", "get_by_id", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableOrderRepository) Create(ctx context.Context, form domain.OrderForm) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Create")
	defer span.End()

	start := time.Now()
	order, err := r.repo.Create(ctx, form)
	r.metrics.RecordRepositoryOp(ctx, "order", "create", time.Since(start).Seconds())
	r.metrics.RecordEntityWrite(ctx, "order", "create", err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.code", order.OrderID),
	)
	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableOrderRepository) Update(ctx context.Context, id string, form domain.OrderForm) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Update")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("order.id", id))

	start := time.Now()
	order, err := r.repo.Update(ctx, id, form)
	r.metrics.RecordRepositoryOp(ctx, "order", "update", time.Since(start).Seconds())
	r.metrics.RecordEntityWrite(ctx, "order", "update", err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableOrderRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Delete")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("order.id", id))

	start := time.Now()
	err := r.repo.Delete(ctx, id)
	r.metrics.RecordRepositoryOp(ctx, "order", "delete", time.Since(start).Seconds())
	r.metrics.RecordEntityWrite(ctx, "order", "delete", err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

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

type ObservableProductRepository struct {
	repo    ports.ProductRepository
	metrics *metrics.Metrics
}

func NewObservableProductRepository(repo ports.ProductRepository, metrics *metrics.Metrics) *ObservableProductRepository {
	return &ObservableProductRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductRepository.List")
	defer span.End()

	start := time.Now()
	products, err := r.repo.List(ctx)
	r.metrics.RecordRepositoryOp(ctx, "product", "list", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(products)))
	telemetry.SetSpanSuccess(span)
	return products, nil
}

func (r *ObservableProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductRepository.GetByID")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("product.id", id))

	start := time.Now()
	product, err := r.repo.GetByID(ctx, id)
	r.metrics.RecordRepositoryOp(ctx, "product", "get_by_id", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return product, nil
}

func (r *ObservableProductRepository) Create(ctx context.Context, form domain.ProductForm) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductRepository.Create")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("product.sku", form.SKU))

	start := time.Now()
	product, err := r.repo.Create(ctx, form)
	r.metrics.RecordRepositoryOp(ctx, "product", "create", time.Since(start).Seconds())
	r.metrics.RecordEntityWrite(ctx, "product", "create", err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.String("product.id", product.ID))
	telemetry.SetSpanSuccess(span)
	return product, nil
}

func (r *ObservableProductRepository) Update(ctx context.Context, id string, form domain.ProductForm) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductRepository.Update")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("product.id", id))

	start := time.Now()
	product, err := r.repo.Update(ctx, id, form)
	r.metrics.RecordRepositoryOp(ctx, "product", "update", time.Since(start).Seconds())
	r.metrics.RecordEntityWrite(ctx, "product", "update", err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return product, nil
}

func (r *ObservableProductRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "ProductRepository.Delete")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("product.id", id))

	start := time.Now()
	err := r.repo.Delete(ctx, id)
	r.metrics.RecordRepositoryOp(ctx, "product", "delete", time.Since(start).Seconds())
	r.metrics.RecordEntityWrite(ctx, "product", "delete", err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableProductRepository) IsNameUnique(ctx context.Context, name, excludeID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductRepository.IsNameUnique")
	defer span.End()

	start := time.Now()
	unique, err := r.repo.IsNameUnique(ctx, name, excludeID)
	r.metrics.RecordRepositoryOp(ctx, "product", "is_name_unique", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}

	telemetry.AddSpanAttributes(span, attribute.Bool("result.unique", unique))
	telemetry.SetSpanSuccess(span)
	return unique, nil
}

func (r *ObservableProductRepository) IsSKUUnique(ctx context.Context, sku, excludeID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductRepository.IsSKUUnique")
	defer span.End()

	start := time.Now()
	unique, err := r.repo.IsSKUUnique(ctx, sku, excludeID)
	r.metrics.RecordRepositoryOp(ctx, "product", "is_sku_unique", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}

	telemetry.AddSpanAttributes(span, attribute.Bool("result.unique", unique))
	telemetry.SetSpanSuccess(span)
	return unique, nil
}

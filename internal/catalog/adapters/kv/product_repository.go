package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dejobratic/shopdash/internal/catalog/domain"
	"github.com/dejobratic/shopdash/internal/catalog/ports"
	"github.com/dejobratic/shopdash/internal/kvstore"
	"github.com/oklog/ulid/v2"
)

// ProductsCollection names the store slot holding the product array.
const ProductsCollection = "products"

// ProductRepository persists products as one JSON array in a store slot.
// Every write is a full-collection read-modify-write serialized by the
// repository mutex, which is the single-writer point that makes the
// uniqueness checks in Create and Update safe.
type ProductRepository struct {
	store     kvstore.Store
	analytics ports.AnalyticsProvider
	mu        sync.Mutex
	now       func() time.Time
}

// NewProductRepository constructs a repository over the given store slot.
func NewProductRepository(store kvstore.Store, analytics ports.AnalyticsProvider) *ProductRepository {
	return &ProductRepository{
		store:     store,
		analytics: analytics,
		now:       time.Now,
	}
}

func (r *ProductRepository) load(ctx context.Context) ([]domain.Product, error) {
	payload, ok, err := r.store.Load(ctx, ProductsCollection)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if !ok || len(payload) == 0 {
		return nil, nil
	}
	var products []domain.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) save(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	if err := r.store.Save(ctx, ProductsCollection, payload); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	return nil
}

// List returns the collection in insertion order.
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// GetByID fetches a single product by identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			product := products[i]
			return &product, nil
		}
	}
	return nil, ports.ErrNotFound
}

// Create appends a new product. The SKU is uppercased, analytics are
// fabricated by the provider, and name/SKU uniqueness is enforced here rather
// than trusting an earlier advisory check.
func (r *ProductRepository) Create(ctx context.Context, form domain.ProductForm) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	sku := strings.ToUpper(strings.TrimSpace(form.SKU))
	if err := checkProductUniqueness(products, form.Name, sku, ""); err != nil {
		return nil, err
	}

	stats, err := r.analytics.ProductAnalytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("fabricate product analytics: %w", err)
	}

	now := r.now().UTC()
	sales := stats.Sales
	product := domain.Product{
		ID:                 ulid.Make().String(),
		Name:               form.Name,
		SKU:                sku,
		Category:           form.Category,
		Price:              form.Price,
		StockQuantity:      form.StockQuantity,
		Description:        form.Description,
		Image:              form.Image,
		IsActive:           form.IsActive,
		CreatedAt:          now,
		UpdatedAt:          now,
		SalesData:          &sales,
		DeliveryProgress:   stats.DeliveryProgress,
		ClientSatisfaction: stats.ClientSatisfaction,
	}

	products = append(products, product)
	if err := r.save(ctx, products); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update merges the form over the existing record, preserving id, created_at
// and analytics. Price and stock are persisted as given; value clamping is a
// validation concern that never reaches this layer.
func (r *ProductRepository) Update(ctx context.Context, id string, form domain.ProductForm) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range products {
		if products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ports.ErrNotFound
	}

	sku := strings.ToUpper(strings.TrimSpace(form.SKU))
	if err := checkProductUniqueness(products, form.Name, sku, id); err != nil {
		return nil, err
	}

	product := products[idx]
	product.Name = form.Name
	product.SKU = sku
	product.Category = form.Category
	product.Price = form.Price
	product.StockQuantity = form.StockQuantity
	product.Description = form.Description
	product.Image = form.Image
	product.IsActive = form.IsActive
	product.UpdatedAt = r.now().UTC()

	products[idx] = product
	if err := r.save(ctx, products); err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes the product if present. Deleting an absent id is a no-op.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := products[:0]
	for _, product := range products {
		if product.ID != id {
			kept = append(kept, product)
		}
	}
	if len(kept) == len(products) {
		return nil
	}
	return r.save(ctx, kept)
}

// IsNameUnique reports whether no other live product carries the name.
// Comparison is case-sensitive. An excludeID allows edit forms to skip the
// record being edited.
func (r *ProductRepository) IsNameUnique(ctx context.Context, name, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	for i := range products {
		if products[i].ID == excludeID {
			continue
		}
		if products[i].Name == name {
			return false, nil
		}
	}
	return true, nil
}

// IsSKUUnique reports whether no other live product carries the SKU. Input is
// uppercased before comparison since stored SKUs are uppercase.
func (r *ProductRepository) IsSKUUnique(ctx context.Context, sku, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	sku = strings.ToUpper(strings.TrimSpace(sku))
	for i := range products {
		if products[i].ID == excludeID {
			continue
		}
		if products[i].SKU == sku {
			return false, nil
		}
	}
	return true, nil
}

func checkProductUniqueness(products []domain.Product, name, sku, excludeID string) error {
	for i := range products {
		if products[i].ID == excludeID {
			continue
		}
		if products[i].Name == name {
			return ports.ErrDuplicateName
		}
		if products[i].SKU == sku {
			return ports.ErrDuplicateSKU
		}
	}
	return nil
}

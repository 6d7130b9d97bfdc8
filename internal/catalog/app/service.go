package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dejobratic/shopdash/internal/catalog/domain"
	"github.com/dejobratic/shopdash/internal/catalog/ports"
	"github.com/dejobratic/shopdash/internal/querycache"
)

// Service is the call surface consumed by a presentation layer. Reads go
// through the query cache under the canonical keys; writes run through the
// mutation orchestrator, which invalidates the affected keys on success.
type Service struct {
	products ports.ProductRepository
	orders   ports.OrderRepository
	cache    *querycache.Cache
	mutator  *querycache.Mutator
}

// NewService wires required dependencies.
func NewService(
	products ports.ProductRepository,
	orders ports.OrderRepository,
	cache *querycache.Cache,
	mutator *querycache.Mutator,
) *Service {
	return &Service{
		products: products,
		orders:   orders,
		cache:    cache,
		mutator:  mutator,
	}
}

// ListProducts returns the product collection, served from cache when fresh.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return querycache.GetAs(ctx, s.cache, querycache.ProductsKey(), s.products.List)
}

// GetProduct retrieves one product. A nil product with a nil error is the
// valid not-found outcome; callers render it as an empty state.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("product id is required")
	}
	return querycache.GetAs(ctx, s.cache, querycache.ProductKey(id),
		func(ctx context.Context) (*domain.Product, error) {
			product, err := s.products.GetByID(ctx, id)
			if errors.Is(err, ports.ErrNotFound) {
				return nil, nil
			}
			return product, err
		})
}

// CreateProduct validates the form and persists a new product; on success the
// product collection key is invalidated.
func (s *Service) CreateProduct(ctx context.Context, form domain.ProductForm) (*domain.Product, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	result, err := s.mutator.Do(ctx, querycache.MutationSpec{
		Name: "create_product",
		Op: func(ctx context.Context) (any, error) {
			return s.products.Create(ctx, form)
		},
		Keys: func(any) []querycache.Key {
			return []querycache.Key{querycache.ProductsKey()}
		},
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Product), nil
}

// UpdateProduct validates the form and rewrites the product; on success both
// the collection key and the product's detail key are invalidated.
func (s *Service) UpdateProduct(ctx context.Context, id string, form domain.ProductForm) (*domain.Product, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	result, err := s.mutator.Do(ctx, querycache.MutationSpec{
		Name: "update_product",
		Op: func(ctx context.Context) (any, error) {
			return s.products.Update(ctx, id, form)
		},
		Keys: func(any) []querycache.Key {
			return []querycache.Key{querycache.ProductsKey(), querycache.ProductKey(id)}
		},
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Product), nil
}

// DeleteProduct removes the product; deleting an absent id succeeds.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.mutator.Do(ctx, querycache.MutationSpec{
		Name: "delete_product",
		Op: func(ctx context.Context) (any, error) {
			return nil, s.products.Delete(ctx, id)
		},
		Keys: func(any) []querycache.Key {
			return []querycache.Key{querycache.ProductsKey()}
		},
	})
	return err
}

// IsSKUUnique is the advisory check backing async form validation. The
// repository still enforces uniqueness on write.
func (s *Service) IsSKUUnique(ctx context.Context, sku, excludeID string) (bool, error) {
	return s.products.IsSKUUnique(ctx, sku, excludeID)
}

// IsNameUnique is the advisory check backing async form validation.
func (s *Service) IsNameUnique(ctx context.Context, name, excludeID string) (bool, error) {
	return s.products.IsNameUnique(ctx, name, excludeID)
}

// ListOrders returns the order collection, served from cache when fresh.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return querycache.GetAs(ctx, s.cache, querycache.OrdersKey(), s.orders.List)
}

// GetOrder retrieves one order; nil with a nil error is the not-found outcome.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("order id is required")
	}
	return querycache.GetAs(ctx, s.cache, querycache.OrderKey(id),
		func(ctx context.Context) (*domain.Order, error) {
			order, err := s.orders.GetByID(ctx, id)
			if errors.Is(err, ports.ErrNotFound) {
				return nil, nil
			}
			return order, err
		})
}

// CreateOrder validates the form and persists a new order with a fresh
// display code and a recomputed total.
func (s *Service) CreateOrder(ctx context.Context, form domain.OrderForm) (*domain.Order, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	result, err := s.mutator.Do(ctx, querycache.MutationSpec{
		Name: "create_order",
		Op: func(ctx context.Context) (any, error) {
			return s.orders.Create(ctx, form)
		},
		Keys: func(any) []querycache.Key {
			return []querycache.Key{querycache.OrdersKey()}
		},
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Order), nil
}

// UpdateOrder validates the form and rewrites the order.
func (s *Service) UpdateOrder(ctx context.Context, id string, form domain.OrderForm) (*domain.Order, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	result, err := s.mutator.Do(ctx, querycache.MutationSpec{
		Name: "update_order",
		Op: func(ctx context.Context) (any, error) {
			return s.orders.Update(ctx, id, form)
		},
		Keys: func(any) []querycache.Key {
			return []querycache.Key{querycache.OrdersKey(), querycache.OrderKey(id)}
		},
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Order), nil
}

// DeleteOrder removes the order; deleting an absent id succeeds.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	_, err := s.mutator.Do(ctx, querycache.MutationSpec{
		Name: "delete_order",
		Op: func(ctx context.Context) (any, error) {
			return nil, s.orders.Delete(ctx, id)
		},
		Keys: func(any) []querycache.Key {
			return []querycache.Key{querycache.OrdersKey()}
		},
	})
	return err
}

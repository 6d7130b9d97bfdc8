package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/shopdash/internal/catalog/domain"
)

// ProductRepository exposes persistence operations over the product
// collection. List preserves insertion order; Delete of an absent id is a
// no-op. Uniqueness of name and SKU is enforced inside Create and Update, not
// only by the advisory Is*Unique checks.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, form domain.ProductForm) (*domain.Product, error)
	Update(ctx context.Context, id string, form domain.ProductForm) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	IsNameUnique(ctx context.Context, name, excludeID string) (bool, error)
	IsSKUUnique(ctx context.Context, sku, excludeID string) (bool, error)
}

// OrderRepository exposes persistence operations over the order collection.
type OrderRepository interface {
	List(ctx context.Context) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, form domain.OrderForm) (*domain.Order, error)
	Update(ctx context.Context, id string, form domain.OrderForm) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrDuplicateSKU is returned when a create or update would reuse the
	// SKU of another live product.
	ErrDuplicateSKU = errors.New("sku already in use")
	// ErrDuplicateName is returned when a create or update would reuse the
	// name of another live product.
	ErrDuplicateName = errors.New("product name already in use")
)

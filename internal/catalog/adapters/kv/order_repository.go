package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dejobratic/shopdash/internal/catalog/domain"
	"github.com/dejobratic/shopdash/internal/catalog/ports"
	"github.com/dejobratic/shopdash/internal/kvstore"
	"github.com/oklog/ulid/v2"
)

// OrdersCollection names the store slot holding the order array.
const OrdersCollection = "orders"

const orderCodePrefix = "ORD-"

// OrderRepository persists orders as one JSON array in a store slot, with the
// same full-collection read-modify-write discipline as the product
// repository.
type OrderRepository struct {
	store kvstore.Store
	mu    sync.Mutex
	now   func() time.Time
}

// NewOrderRepository constructs a repository over the given store slot.
func NewOrderRepository(store kvstore.Store) *OrderRepository {
	return &OrderRepository{store: store, now: time.Now}
}

func (r *OrderRepository) load(ctx context.Context) ([]domain.Order, error) {
	payload, ok, err := r.store.Load(ctx, OrdersCollection)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if !ok || len(payload) == 0 {
		return nil, nil
	}
	var orders []domain.Order
	if err := json.Unmarshal(payload, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) save(ctx context.Context, orders []domain.Order) error {
	if orders == nil {
		orders = []domain.Order{}
	}
	payload, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	if err := r.store.Save(ctx, OrdersCollection, payload); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}

// List returns the collection in insertion order.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// GetByID fetches a single order by identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			order := orders[i]
			return &order, nil
		}
	}
	return nil, ports.ErrNotFound
}

// Create appends a new order. The display code continues the highest existing
// numeric suffix so deleted orders never cause code reuse, and the total is
// always recomputed from the items.
func (r *OrderRepository) Create(ctx context.Context, form domain.OrderForm) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	order := domain.Order{
		ID:               ulid.Make().String(),
		OrderID:          nextOrderCode(orders),
		ClientName:       form.ClientName,
		ClientEmail:      form.ClientEmail,
		Items:            append([]domain.OrderItem(nil), form.Items...),
		TotalAmount:      domain.ItemsTotal(form.Items),
		PaymentStatus:    form.PaymentStatus,
		DeliveryStatus:   form.DeliveryStatus,
		DeliveryProgress: form.DeliveryProgress,
		DeliveryAddress:  form.DeliveryAddress,
		ExpectedDelivery: form.ExpectedDelivery,
		CustomerFeedback: form.CustomerFeedback,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	orders = append(orders, order)
	if err := r.save(ctx, orders); err != nil {
		return nil, err
	}
	return &order, nil
}

// Update merges the form over the existing record, preserving id, order code
// and created_at, refreshing updated_at and recomputing the total.
func (r *OrderRepository) Update(ctx context.Context, id string, form domain.OrderForm) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range orders {
		if orders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ports.ErrNotFound
	}

	order := orders[idx]
	order.ClientName = form.ClientName
	order.ClientEmail = form.ClientEmail
	order.Items = append([]domain.OrderItem(nil), form.Items...)
	order.TotalAmount = domain.ItemsTotal(form.Items)
	order.PaymentStatus = form.PaymentStatus
	order.DeliveryStatus = form.DeliveryStatus
	order.DeliveryProgress = form.DeliveryProgress
	order.DeliveryAddress = form.DeliveryAddress
	order.ExpectedDelivery = form.ExpectedDelivery
	order.CustomerFeedback = form.CustomerFeedback
	order.UpdatedAt = r.now().UTC()

	orders[idx] = order
	if err := r.save(ctx, orders); err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete removes the order if present. Deleting an absent id is a no-op.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := orders[:0]
	for _, order := range orders {
		if order.ID != id {
			kept = append(kept, order)
		}
	}
	if len(kept) == len(orders) {
		return nil
	}
	return r.save(ctx, kept)
}

func nextOrderCode(orders []domain.Order) string {
	highest := 0
	for i := range orders {
		suffix, ok := strings.CutPrefix(orders[i].OrderID, orderCodePrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", orderCodePrefix, highest+1)
}

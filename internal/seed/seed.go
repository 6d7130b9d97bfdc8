// Package seed provides the deterministic starter catalog written into empty
// store slots, so a fresh installation has data on first load.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dejobratic/shopdash/internal/catalog/adapters/kv"
	"github.com/dejobratic/shopdash/internal/catalog/domain"
	"github.com/dejobratic/shopdash/internal/kvstore"
)

var seededAt = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

// Products returns the starter product catalog.
func Products() []domain.Product {
	return []domain.Product{
		{
			ID:                 "1",
			Name:               "Wireless Headphones",
			SKU:                "WH-001",
			Category:           "Electronics",
			Price:              129.99,
			StockQuantity:      45,
			Description:        "Over-ear wireless headphones with noise cancellation",
			IsActive:           true,
			CreatedAt:          seededAt,
			UpdatedAt:          seededAt,
			SalesData:          &domain.SalesData{Last7Days: []int{12, 19, 8, 24, 17, 31, 22}, TotalSales: 1240},
			DeliveryProgress:   82,
			ClientSatisfaction: 4,
		},
		{
			ID:                 "2",
			Name:               "Mechanical Keyboard",
			SKU:                "MK-014",
			Category:           "Electronics",
			Price:              89.50,
			StockQuantity:      120,
			Description:        "Tenkeyless mechanical keyboard, brown switches",
			IsActive:           true,
			CreatedAt:          seededAt,
			UpdatedAt:          seededAt,
			SalesData:          &domain.SalesData{Last7Days: []int{7, 11, 14, 9, 16, 12, 18}, TotalSales: 860},
			DeliveryProgress:   64,
			ClientSatisfaction: 5,
		},
		{
			ID:                 "3",
			Name:               "Standing Desk",
			SKU:                "SD-203",
			Category:           "Furniture",
			Price:              449.00,
			StockQuantity:      18,
			Description:        "Electric height-adjustable standing desk",
			IsActive:           true,
			CreatedAt:          seededAt,
			UpdatedAt:          seededAt,
			SalesData:          &domain.SalesData{Last7Days: []int{3, 5, 2, 6, 4, 7, 5}, TotalSales: 312},
			DeliveryProgress:   45,
			ClientSatisfaction: 4,
		},
		{
			ID:                 "4",
			Name:               "Desk Lamp",
			SKU:                "DL-077",
			Category:           "Lighting",
			Price:              34.95,
			StockQuantity:      0,
			Description:        "LED desk lamp with adjustable color temperature",
			IsActive:           false,
			CreatedAt:          seededAt,
			UpdatedAt:          seededAt,
			SalesData:          &domain.SalesData{Last7Days: []int{22, 18, 25, 19, 28, 24, 30}, TotalSales: 2105},
			DeliveryProgress:   100,
			ClientSatisfaction: 3,
		},
		{
			ID:                 "5",
			Name:               "Ergonomic Chair",
			SKU:                "EC-310",
			Category:           "Furniture",
			Price:              289.00,
			StockQuantity:      33,
			Description:        "Mesh-back office chair with lumbar support",
			IsActive:           true,
			CreatedAt:          seededAt,
			UpdatedAt:          seededAt,
			SalesData:          &domain.SalesData{Last7Days: []int{9, 6, 11, 8, 13, 10, 15}, TotalSales: 688},
			DeliveryProgress:   58,
			ClientSatisfaction: 5,
		},
	}
}

// Orders returns the starter order book. Totals are computed from the items,
// never hand-written.
func Orders() []domain.Order {
	orders := []domain.Order{
		{
			ID:          "101",
			OrderID:     "ORD-001",
			ClientName:  "Amelia Santos",
			ClientEmail: "amelia.santos@example.com",
			Items: []domain.OrderItem{
				{ProductID: "1", ProductName: "Wireless Headphones", Price: 129.99, Quantity: 1},
				{ProductID: "2", ProductName: "Mechanical Keyboard", Price: 89.50, Quantity: 2},
			},
			PaymentStatus:    domain.PaymentPaid,
			DeliveryStatus:   domain.DeliveryShipped,
			DeliveryProgress: 60,
			DeliveryAddress:  "14 Rosewood Lane, Portland, OR",
			ExpectedDelivery: seededAt.AddDate(0, 0, 6),
			CreatedAt:        seededAt,
			UpdatedAt:        seededAt,
		},
		{
			ID:          "102",
			OrderID:     "ORD-002",
			ClientName:  "Derek Okafor",
			ClientEmail: "d.okafor@example.com",
			Items: []domain.OrderItem{
				{ProductID: "3", ProductName: "Standing Desk", Price: 449.00, Quantity: 1},
			},
			PaymentStatus:    domain.PaymentPending,
			DeliveryStatus:   domain.DeliveryPending,
			DeliveryProgress: 0,
			DeliveryAddress:  "88 Harbor View Rd, Seattle, WA",
			ExpectedDelivery: seededAt.AddDate(0, 0, 12),
			CreatedAt:        seededAt.Add(26 * time.Hour),
			UpdatedAt:        seededAt.Add(26 * time.Hour),
		},
		{
			ID:          "103",
			OrderID:     "ORD-003",
			ClientName:  "Mei Lin",
			ClientEmail: "mei.lin@example.com",
			Items: []domain.OrderItem{
				{ProductID: "5", ProductName: "Ergonomic Chair", Price: 289.00, Quantity: 2},
				{ProductID: "4", ProductName: "Desk Lamp", Price: 34.95, Quantity: 3},
			},
			PaymentStatus:    domain.PaymentPaid,
			DeliveryStatus:   domain.DeliveryDelivered,
			DeliveryProgress: 100,
			DeliveryAddress:  "5 Calle del Sol, Austin, TX",
			ExpectedDelivery: seededAt.AddDate(0, 0, -2),
			CustomerFeedback: 5,
			CreatedAt:        seededAt.Add(-240 * time.Hour),
			UpdatedAt:        seededAt.Add(-48 * time.Hour),
		},
		{
			ID:          "104",
			OrderID:     "ORD-004",
			ClientName:  "Jonas Berg",
			ClientEmail: "jonas.berg@example.com",
			Items: []domain.OrderItem{
				{ProductID: "2", ProductName: "Mechanical Keyboard", Price: 89.50, Quantity: 1},
			},
			PaymentStatus:    domain.PaymentRefunded,
			DeliveryStatus:   domain.DeliveryCanceled,
			DeliveryProgress: 0,
			DeliveryAddress:  "221 Birch Street, Denver, CO",
			ExpectedDelivery: seededAt.AddDate(0, 0, 8),
			CustomerFeedback: 2,
			CreatedAt:        seededAt.Add(-72 * time.Hour),
			UpdatedAt:        seededAt.Add(-20 * time.Hour),
		},
	}

	for i := range orders {
		orders[i].TotalAmount = domain.ItemsTotal(orders[i].Items)
	}
	return orders
}

// Ensure writes the starter dataset into any store slot that does not exist
// yet. Existing slots are left untouched, so it is safe to run on every
// startup.
func Ensure(ctx context.Context, store kvstore.Store) error {
	if err := ensureSlot(ctx, store, kv.ProductsCollection, Products()); err != nil {
		return err
	}
	return ensureSlot(ctx, store, kv.OrdersCollection, Orders())
}

func ensureSlot[T any](ctx context.Context, store kvstore.Store, collection string, entities []T) error {
	_, ok, err := store.Load(ctx, collection)
	if err != nil {
		return fmt.Errorf("check %s slot: %w", collection, err)
	}
	if ok {
		return nil
	}

	payload, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("encode %s seed: %w", collection, err)
	}
	if err := store.Save(ctx, collection, payload); err != nil {
		return fmt.Errorf("write %s seed: %w", collection, err)
	}
	return nil
}

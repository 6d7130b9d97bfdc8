package domain

import (
	"errors"
	"strings"
	"time"
)

// SalesData is the fabricated recent-sales series attached to a product on
// creation. It stands in for a real analytics feed.
type SalesData struct {
	Last7Days  []int `json:"last7Days"`
	TotalSales int   `json:"totalSales"`
}

// ProductAnalytics bundles every derived field a provider fabricates for a
// newly created product.
type ProductAnalytics struct {
	Sales              SalesData
	DeliveryProgress   int
	ClientSatisfaction int
}

// Product is a catalog entry managed through the admin screens.
//
// JSON field names follow the persisted slot layout, so collections written
// by earlier versions of the dashboard load unchanged.
type Product struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	SKU                string     `json:"sku"`
	Category           string     `json:"category"`
	Price              float64    `json:"price"`
	StockQuantity      int        `json:"stockQuantity"`
	Description        string     `json:"description,omitempty"`
	Image              string     `json:"image,omitempty"`
	IsActive           bool       `json:"isActive"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	SalesData          *SalesData `json:"salesData,omitempty"`
	DeliveryProgress   int        `json:"deliveryProgress,omitempty"`
	ClientSatisfaction int        `json:"clientSatisfaction,omitempty"`
}

// ProductForm carries the editable fields of a product create/edit form.
// Identifier, timestamps and analytics are assigned by the repository.
type ProductForm struct {
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stockQuantity"`
	Description   string  `json:"description,omitempty"`
	Image         string  `json:"image,omitempty"`
	IsActive      bool    `json:"isActive"`
}

// Validate ensures the form adheres to business constraints.
func (f ProductForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("product name is required")
	}
	if strings.TrimSpace(f.SKU) == "" {
		return errors.New("sku is required")
	}
	if strings.TrimSpace(f.Category) == "" {
		return errors.New("category is required")
	}
	if f.Price <= 0 {
		return errors.New("price must be greater than 0")
	}
	if f.StockQuantity < 0 {
		return errors.New("stock quantity cannot be negative")
	}
	return nil
}

package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// PaymentStatus captures the payment lifecycle of an order.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentPending  PaymentStatus = "pending"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentRefunded:
		return true
	default:
		return false
	}
}

// DeliveryStatus captures the fulfillment lifecycle of an order.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryShipped   DeliveryStatus = "shipped"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCanceled  DeliveryStatus = "canceled"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryPending, DeliveryShipped, DeliveryDelivered, DeliveryCanceled:
		return true
	default:
		return false
	}
}

// IsTerminal indicates whether the delivery reached a final state.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryDelivered || s == DeliveryCanceled
}

// OrderItem is a line of an order. Product name and price are snapshots taken
// at order time; later product edits do not rewrite history.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Order is a customer order managed through the admin screens.
type Order struct {
	ID               string         `json:"id"`
	OrderID          string         `json:"orderId"`
	ClientName       string         `json:"clientName"`
	ClientEmail      string         `json:"clientEmail"`
	Items            []OrderItem    `json:"items"`
	TotalAmount      float64        `json:"totalAmount"`
	PaymentStatus    PaymentStatus  `json:"paymentStatus"`
	DeliveryStatus   DeliveryStatus `json:"deliveryStatus"`
	DeliveryProgress int            `json:"deliveryProgress"`
	DeliveryAddress  string         `json:"deliveryAddress"`
	ExpectedDelivery time.Time      `json:"expectedDelivery"`
	CustomerFeedback int            `json:"customerFeedback,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// OrderForm carries the editable fields of an order create/edit form.
// Identifier, order code, total and timestamps are assigned by the
// repository; any client-supplied total is ignored.
type OrderForm struct {
	ClientName       string         `json:"clientName"`
	ClientEmail      string         `json:"clientEmail"`
	Items            []OrderItem    `json:"items"`
	PaymentStatus    PaymentStatus  `json:"paymentStatus"`
	DeliveryStatus   DeliveryStatus `json:"deliveryStatus"`
	DeliveryProgress int            `json:"deliveryProgress"`
	DeliveryAddress  string         `json:"deliveryAddress"`
	ExpectedDelivery time.Time      `json:"expectedDelivery"`
	CustomerFeedback int            `json:"customerFeedback,omitempty"`
}

// Validate ensures the form adheres to business constraints.
func (f OrderForm) Validate() error {
	if strings.TrimSpace(f.ClientName) == "" {
		return errors.New("client name is required")
	}
	if !validEmail(f.ClientEmail) {
		return errors.New("client email must be valid")
	}
	if len(f.Items) == 0 {
		return errors.New("at least one item is required")
	}
	for i, item := range f.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return fmt.Errorf("item %d: product is required", i+1)
		}
		if strings.TrimSpace(item.ProductName) == "" {
			return fmt.Errorf("item %d: product name is required", i+1)
		}
		if item.Price <= 0 {
			return fmt.Errorf("item %d: price must be positive", i+1)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("item %d: quantity must be at least 1", i+1)
		}
	}
	if !f.PaymentStatus.Valid() {
		return fmt.Errorf("invalid payment status %q", f.PaymentStatus)
	}
	if !f.DeliveryStatus.Valid() {
		return fmt.Errorf("invalid delivery status %q", f.DeliveryStatus)
	}
	if f.DeliveryProgress < 0 || f.DeliveryProgress > 100 {
		return errors.New("delivery progress must be between 0 and 100")
	}
	if strings.TrimSpace(f.DeliveryAddress) == "" {
		return errors.New("delivery address is required")
	}
	if f.ExpectedDelivery.IsZero() {
		return errors.New("expected delivery date is required")
	}
	if f.CustomerFeedback != 0 && (f.CustomerFeedback < 1 || f.CustomerFeedback > 5) {
		return errors.New("customer feedback must be between 1 and 5")
	}
	return nil
}

// ItemsTotal computes the order total from its items, rounded to cents.
func ItemsTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return math.Round(total*100) / 100
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t")
}

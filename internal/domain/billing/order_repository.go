package billing

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create creates a new order
	Create(ctx context.Context, order *Order) error

	// Update updates an existing order
	Update(ctx context.Context, order *Order) error

	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByPaymentIntentID finds the order created for a Stripe
	// payment intent, used for webhook idempotency
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Order, error)

	// FindByUser returns the user's orders, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter OrderFilter) ([]*Order, int64, error)
}

// OrderFilter contains filter options for querying orders
type OrderFilter struct {
	Status   *OrderStatus
	Page     int
	PageSize int
}

// NewOrderFilter creates a filter with default pagination
func NewOrderFilter() OrderFilter {
	return OrderFilter{Page: 1, PageSize: 20}
}

// Offset returns the offset for pagination
func (f OrderFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f OrderFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

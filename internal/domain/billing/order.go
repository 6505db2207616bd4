package billing

import (
	"strings"

	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the payment state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// ValidOrderStatus reports whether the value is a known status
func ValidOrderStatus(status OrderStatus) bool {
	switch status {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

// Order records a payment attempt for a user. Orders are created from
// Stripe webhook events; Amount is the intent amount converted from
// the smallest currency unit. ExtraInfo carries the raw Stripe
// metadata as JSON.
type Order struct {
	shared.BaseEntity
	UserID          uuid.UUID
	Amount          decimal.Decimal
	Currency        string
	Status          OrderStatus
	PaymentIntentID string
	ExtraInfo       string
}

// NewOrder creates an order in the given status
func NewOrder(userID uuid.UUID, amount decimal.Decimal, currency string, status OrderStatus) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}
	if !ValidOrderStatus(status) {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}

	return &Order{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Amount:     amount,
		Currency:   currency,
		Status:     status,
	}, nil
}

// AmountFromStripe converts an amount in the smallest currency unit to
// the decimal major unit, e.g. 1999 cents to 19.99.
func AmountFromStripe(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(100))
}

// Complete marks a pending order as paid
func (o *Order) Complete() error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending orders can be completed")
	}
	o.Status = OrderStatusCompleted
	o.Touch()
	return nil
}

// Fail marks a pending order as failed
func (o *Order) Fail() error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending orders can fail")
	}
	o.Status = OrderStatusFailed
	o.Touch()
	return nil
}

// Refund marks a completed order as refunded
func (o *Order) Refund() error {
	if o.Status != OrderStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Only completed orders can be refunded")
	}
	o.Status = OrderStatusRefunded
	o.Touch()
	return nil
}

// BelongsTo reports whether the order is owned by the user
func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o.UserID == userID
}

package billing

import (
	"time"

	"github.com/codeforge/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents order data transfer object
type OrderDTO struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	ExtraInfo       string          `json:"extra_info,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderListResult represents paginated order list result
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

func toOrderDTO(order *billing.Order) *OrderDTO {
	return &OrderDTO{
		ID:              order.ID,
		UserID:          order.UserID,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Status:          string(order.Status),
		PaymentIntentID: order.PaymentIntentID,
		ExtraInfo:       order.ExtraInfo,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

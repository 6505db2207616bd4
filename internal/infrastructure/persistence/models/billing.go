package models

import (
	"github.com/codeforge/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order domain entity.
type OrderModel struct {
	BaseModel
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Currency        string              `gorm:"type:varchar(3);not null"`
	Status          billing.OrderStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentIntentID string              `gorm:"type:varchar(255);uniqueIndex"`
	ExtraInfo       string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *billing.Order {
	return &billing.Order{
		BaseEntity:      m.BaseModel.ToDomain(),
		UserID:          m.UserID,
		Amount:          m.Amount,
		Currency:        m.Currency,
		Status:          m.Status,
		PaymentIntentID: m.PaymentIntentID,
		ExtraInfo:       m.ExtraInfo,
	}
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *billing.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.UserID = o.UserID
	m.Amount = o.Amount
	m.Currency = o.Currency
	m.Status = o.Status
	m.PaymentIntentID = o.PaymentIntentID
	m.ExtraInfo = o.ExtraInfo
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *billing.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

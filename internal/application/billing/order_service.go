package billing

import (
	"context"
	"errors"

	"github.com/codeforge/backend/internal/domain/billing"
	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService exposes a user's payment history. Orders are created by
// the Stripe webhook flow, never through this service.
type OrderService struct {
	orderRepo billing.OrderRepository
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo billing.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// List returns the caller's orders, newest first
func (s *OrderService) List(ctx context.Context, userID uuid.UUID, filter billing.OrderFilter) (*OrderListResult, error) {
	orders, total, err := s.orderRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list orders")
	}

	pageSize := filter.Limit()
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	dtos := make([]OrderDTO, len(orders))
	for i, order := range orders {
		dtos[i] = *toOrderDTO(order)
	}

	return &OrderListResult{
		Orders:     dtos,
		Total:      total,
		Page:       filter.Page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Get returns a single order. Callers only see their own orders.
func (s *OrderService) Get(ctx context.Context, orderID, userID uuid.UUID) (*OrderDTO, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
		}
		s.logger.Error("Failed to find order", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find order")
	}

	if !order.BelongsTo(userID) {
		return nil, shared.NewDomainError("ACCESS_DENIED", "Order belongs to another user")
	}

	return toOrderDTO(order), nil
}

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/codeforge/backend/internal/domain/billing"
	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/codeforge/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// StripeWebhookService handles Stripe webhook events. Payment intents
// map to orders: succeeded completes, payment_failed fails. Processing
// is idempotent on the payment intent ID, so Stripe retries and
// out-of-order deliveries are safe.
type StripeWebhookService struct {
	config    config.StripeConfig
	orderRepo billing.OrderRepository
	logger    *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(cfg config.StripeConfig, orderRepo billing.OrderRepository, logger *zap.Logger) *StripeWebhookService {
	return &StripeWebhookService{
		config:    cfg,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies the event signature and dispatches it. A
// signature failure returns an error; once the signature passes,
// processing failures are reported in the result so the handler can
// acknowledge the delivery and let Stripe retry on its schedule.
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		s.logger.Error("Failed to verify webhook signature", zap.Error(err))
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	s.logger.Info("Processing Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	switch event.Type {
	case "payment_intent.succeeded":
		err = s.handlePaymentIntent(ctx, event, true)
	case "payment_intent.payment_failed":
		err = s.handlePaymentIntent(ctx, event, false)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Message = "Event type not handled"
	}

	if err != nil {
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
	}

	return result, nil
}

// handlePaymentIntent records the outcome of a payment intent as an
// order for the user named in the intent metadata
func (s *StripeWebhookService) handlePaymentIntent(ctx context.Context, event stripe.Event, succeeded bool) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}

	userID, err := uuid.Parse(intent.Metadata["user_id"])
	if err != nil {
		// intents created outside this system carry no user; ack so
		// Stripe stops retrying
		s.logger.Warn("Payment intent without a usable user_id, skipping",
			zap.String("payment_intent_id", intent.ID))
		return nil
	}

	existing, err := s.orderRepo.FindByPaymentIntentID(ctx, intent.ID)
	switch {
	case err == nil:
		return s.settleExisting(ctx, existing, intent.ID, succeeded)
	case errors.Is(err, shared.ErrNotFound):
		return s.createOrder(ctx, userID, &intent, succeeded)
	default:
		return fmt.Errorf("failed to look up order: %w", err)
	}
}

// settleExisting transitions a previously recorded order. Terminal
// orders are left untouched.
func (s *StripeWebhookService) settleExisting(ctx context.Context, order *billing.Order, intentID string, succeeded bool) error {
	if order.Status != billing.OrderStatusPending {
		s.logger.Info("Duplicate payment intent delivery, order already settled",
			zap.String("payment_intent_id", intentID),
			zap.String("order_id", order.ID.String()),
			zap.String("status", string(order.Status)))
		return nil
	}

	if succeeded {
		if err := order.Complete(); err != nil {
			return err
		}
	} else {
		if err := order.Fail(); err != nil {
			return err
		}
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info("Order settled from payment intent",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_intent_id", intentID),
		zap.String("status", string(order.Status)))

	return nil
}

func (s *StripeWebhookService) createOrder(ctx context.Context, userID uuid.UUID, intent *stripe.PaymentIntent, succeeded bool) error {
	status := billing.OrderStatusCompleted
	if !succeeded {
		status = billing.OrderStatusFailed
	}

	order, err := billing.NewOrder(userID, billing.AmountFromStripe(intent.Amount), string(intent.Currency), status)
	if err != nil {
		return err
	}
	order.PaymentIntentID = intent.ID

	if len(intent.Metadata) > 0 {
		extra, err := json.Marshal(intent.Metadata)
		if err == nil {
			order.ExtraInfo = string(extra)
		}
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("Order created from payment intent",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("payment_intent_id", intent.ID),
		zap.String("status", string(status)))

	return nil
}

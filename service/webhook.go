package service

import (
	"context"
	"errors"
	"log"

	"event_ticketing/model"
)

// WebhookGuard applies payment-outcome notifications to orders. The
// transport handler verifies the sender before calling in; this layer
// only decides what a verified notification does to state. Finalize is
// idempotent underneath, so duplicate deliveries are harmless.
type WebhookGuard struct {
	orders *OrderCoordinator
}

func NewWebhookGuard(orders *OrderCoordinator) *WebhookGuard {
	return &WebhookGuard{orders: orders}
}

// HandlePaymentSucceeded finalizes the order named by the notification.
// An absent order is returned as ErrOrderNotFound so the transport can
// answer retryable: the notification may have outrun the order write.
func (g *WebhookGuard) HandlePaymentSucceeded(ctx context.Context, orderID, paymentRef string) (*model.Order, error) {
	order, err := g.orders.FinalizeOrder(ctx, orderID, paymentRef)
	if err != nil {
		var invalid *InvalidStateError
		if errors.As(err, &invalid) {
			// Terminal already; nothing left to apply.
			log.Printf("webhook: success notification for order %s ignored, status %s", orderID, invalid.Status)
			return g.orders.GetOrder(ctx, orderID)
		}
		return nil, err
	}
	return order, nil
}

// HandlePaymentFailed records the failure and cancels the pending
// order. An order already terminal is left alone.
func (g *WebhookGuard) HandlePaymentFailed(ctx context.Context, orderID, reason string) error {
	if reason == "" {
		reason = "Payment failed"
	}
	_, err := g.orders.CancelOrderWithReason(ctx, orderID, reason)
	if err != nil {
		var invalid *InvalidStateError
		if errors.As(err, &invalid) {
			log.Printf("webhook: failure notification for order %s ignored, status %s", orderID, invalid.Status)
			return nil
		}
		return err
	}
	return nil
}

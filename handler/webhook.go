package handler

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"event_ticketing/service"
	"event_ticketing/utils"
)

// WebhookHandler receives Stripe's payment-outcome notifications. The
// signature is verified before anything else runs; unknown event kinds
// are acknowledged so Stripe stops redelivering them.
type WebhookHandler struct {
	guard         *service.WebhookGuard
	signingSecret string
}

func NewWebhookHandler(guard *service.WebhookGuard, signingSecret string) *WebhookHandler {
	return &WebhookHandler{guard: guard, signingSecret: signingSecret}
}

func (h *WebhookHandler) HandleStripeEvent(c *fiber.Ctx) error {
	event, err := webhook.ConstructEvent(c.Body(), c.Get("Stripe-Signature"), h.signingSecret)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook signature", err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		return h.paymentSucceeded(c, event)
	case "payment_intent.payment_failed":
		return h.paymentFailed(c, event)
	default:
		log.Printf("webhook: ignoring event type %s", event.Type)
		return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"received": true})
	}
}

func (h *WebhookHandler) paymentSucceeded(c *fiber.Ctx, event stripe.Event) error {
	intent, orderID, err := parseIntent(event)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Malformed payment intent payload", err)
	}

	if _, err := h.guard.HandlePaymentSucceeded(c.UserContext(), orderID, intent.ID); err != nil {
		// 500 makes Stripe redeliver. That only helps when waiting can
		// change the outcome: the order write has not landed yet, the
		// gateway's state is lagging the event, or infrastructure is
		// down. Deterministic failures would 500 on every redelivery
		// forever, so those are acknowledged and alerted instead.
		if retryableOutcome(err) {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Could not apply payment outcome yet, retry", err)
		}
		log.Printf("ALERT webhook: success for order %s cannot be applied: %v", orderID, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"received": true})
}

func retryableOutcome(err error) bool {
	var (
		leaseErr   *service.LeaseStoreError
		durableErr *service.DurableStoreError
		gatewayErr *service.GatewayError
	)
	return errors.Is(err, service.ErrOrderNotFound) ||
		errors.Is(err, service.ErrPaymentNotConfirmed) ||
		errors.As(err, &leaseErr) ||
		errors.As(err, &durableErr) ||
		errors.As(err, &gatewayErr)
}

func (h *WebhookHandler) paymentFailed(c *fiber.Ctx, event stripe.Event) error {
	intent, orderID, err := parseIntent(event)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Malformed payment intent payload", err)
	}

	reason := "Payment failed"
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		reason = intent.LastPaymentError.Msg
	}
	if err := h.guard.HandlePaymentFailed(c.UserContext(), orderID, reason); err != nil {
		// Failure outcomes are best-effort; the reaper will expire the
		// order anyway if this never applies.
		log.Printf("webhook: applying failure for order %s failed: %v", orderID, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"received": true})
}

func parseIntent(event stripe.Event) (*stripe.PaymentIntent, string, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, "", err
	}
	orderID := intent.Metadata["order_id"]
	if orderID == "" {
		return nil, "", errors.New("payment intent carries no order_id metadata")
	}
	return &intent, orderID, nil
}

package gateway

import "context"

// MinimumChargeMinorUnits is the smallest amount the gateway accepts.
// Amounts below it are rejected locally before any network call.
const MinimumChargeMinorUnits int64 = 50

// Intent is the reference handed back when a payment intent is created.
// ClientSecret goes to the client for the payment UI; IntentID is the
// reference stored on the order.
type Intent struct {
	IntentID     string `json:"paymentIntentId"`
	ClientSecret string `json:"clientSecret"`
}

// PaymentGateway is the consumed payment-provider interface.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64, orderID, userID string) (*Intent, error)
	IsSucceeded(ctx context.Context, intentID string) (bool, error)
}

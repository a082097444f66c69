package gateway

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway implements PaymentGateway against the Stripe API.
type StripeGateway struct {
	currency string
}

// NewStripeGateway configures the shared Stripe client. currency is the
// lowercase ISO code, e.g. "usd".
func NewStripeGateway(secretKey, currency string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	stripe.Key = secretKey
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{currency: currency}, nil
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinorUnits int64, orderID, userID string) (*Intent, error) {
	if amountMinorUnits < MinimumChargeMinorUnits {
		return nil, fmt.Errorf("amount %d below gateway minimum %d", amountMinorUnits, MinimumChargeMinorUnits)
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinorUnits),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"order_id": orderID,
			"user_id":  userID,
		},
	}
	params.Context = ctx
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &Intent{IntentID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) IsSucceeded(ctx context.Context, intentID string) (bool, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return false, err
	}
	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}

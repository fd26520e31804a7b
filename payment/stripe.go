// Package payment talks to Stripe for payment intents.
package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

var StatusSucceeded = string(stripe.PaymentIntentStatusSucceeded)

type StripeGateway struct {
	api            *client.API
	publishableKey string
}

func NewStripeGateway(secretKey, publishableKey string) *StripeGateway {
	return newStripeGateway(secretKey, publishableKey, nil)
}

// newStripeGateway uses the default Stripe backends when backends is nil.
func newStripeGateway(secretKey, publishableKey string, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{api: api, publishableKey: publishableKey}
}

func (g *StripeGateway) PublishableKey() string {
	return g.publishableKey
}

// IntentStatus returns the status of a payment intent, e.g. "succeeded".
func (g *StripeGateway) IntentStatus(ctx context.Context, intentID string) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return "", fmt.Errorf("retrieve payment intent %s: %w", intentID, err)
	}
	return string(pi.Status), nil
}

// CreateIntent opens a USD payment intent and returns its client secret.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("company", "ELearning")

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}

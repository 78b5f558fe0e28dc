// Package payment adapts ports.PaymentGateway onto Stripe Checkout Sessions,
// wrapped in a circuit breaker so a Stripe outage fails fast instead of
// stacking up slow REST requests.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/ports"
	"github.com/seu-repo/csms/internal/resilience"
)

// StripeGateway creates Stripe-hosted checkout sessions. Checkout (not a
// bare PaymentIntent) is used because the intent flow needs a redirectable
// URL to hand back to an anonymous, account-less payer.
type StripeGateway struct {
	breaker *resilience.CircuitBreaker
	log     *zap.Logger
}

func NewStripeGateway(secretKey string, log *zap.Logger) *StripeGateway {
	stripe.Key = secretKey
	breaker := resilience.New(resilience.Settings{
		Name:             "stripe_checkout",
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
	}, log)
	return &StripeGateway{breaker: breaker, log: log}
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, params ports.CheckoutParams) (*ports.CheckoutResult, error) {
	currency := params.Currency
	if currency == "" {
		currency = "huf"
	}

	result, err := g.breaker.ExecuteCtx(ctx, func(ctx context.Context) (interface{}, error) {
		checkoutParams := &stripe.CheckoutSessionParams{
			Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
			ClientReferenceID: stripe.String(params.IntentID),
			SuccessURL:        stripe.String(params.SuccessURL),
			CancelURL:         stripe.String(params.CancelURL),
			LineItems: []*stripe.CheckoutSessionLineItemParams{
				{
					Quantity: stripe.Int64(1),
					PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
						Currency:   stripe.String(currency),
						UnitAmount: stripe.Int64(params.AmountHUF * 100),
						ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
							Name: stripe.String("EV charging session hold"),
						},
					},
				},
			},
			Metadata: map[string]string{
				"intent_id": params.IntentID,
			},
		}
		if params.CustomerEmail != "" {
			checkoutParams.CustomerEmail = stripe.String(params.CustomerEmail)
		}
		checkoutParams.Params = stripe.Params{
			Context:        ctx,
			IdempotencyKey: stripe.String(params.IdempotencyKey),
		}

		return session.New(checkoutParams)
	})
	if err != nil {
		if resilience.IsOpen(err) {
			g.log.Warn("stripe circuit breaker open, refusing checkout creation")
		}
		return nil, fmt.Errorf("creating stripe checkout session: %w", err)
	}

	sess := result.(*stripe.CheckoutSession)
	return &ports.CheckoutResult{
		ProviderName: "stripe",
		ProviderRef:  sess.ID,
		CheckoutURL:  sess.URL,
	}, nil
}

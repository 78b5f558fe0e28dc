package ports

import "context"

// CheckoutParams describes an outbound request to create a payment-provider
// checkout session.
type CheckoutParams struct {
	IntentID       string
	AmountHUF      int64
	Currency       string
	CustomerEmail  string
	SuccessURL     string
	CancelURL      string
	IdempotencyKey string
}

// CheckoutResult is what the provider hands back once a checkout session is
// created.
type CheckoutResult struct {
	ProviderName string
	ProviderRef  string
	CheckoutURL  string
}

// PaymentGateway creates provider-hosted checkout sessions. Webhook
// verification is handled separately (internal/session/webhook.go) since it
// needs the spec's exact sub-error-codes, not a generic gateway error type.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutResult, error)
}

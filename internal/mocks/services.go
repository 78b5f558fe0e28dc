package mocks

import (
	"context"

	"github.com/seu-repo/csms/internal/ports"
)

// MockPaymentGateway is a mock implementation of ports.PaymentGateway.
type MockPaymentGateway struct {
	CreateCheckoutFunc func(ctx context.Context, params ports.CheckoutParams) (*ports.CheckoutResult, error)
}

func (m *MockPaymentGateway) CreateCheckout(ctx context.Context, params ports.CheckoutParams) (*ports.CheckoutResult, error) {
	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, params)
	}
	return &ports.CheckoutResult{ProviderName: "mock", ProviderRef: "mock-ref", CheckoutURL: "https://example.com/checkout"}, nil
}

// MockNotifier is a mock implementation of ports.Notifier.
type MockNotifier struct {
	SendStopCodeFunc func(ctx context.Context, email, plaintextCode string) error
	Sent             []string
}

func (m *MockNotifier) SendStopCode(ctx context.Context, email, plaintextCode string) error {
	m.Sent = append(m.Sent, email+":"+plaintextCode)
	if m.SendStopCodeFunc != nil {
		return m.SendStopCodeFunc(ctx, email, plaintextCode)
	}
	return nil
}

// MockTransactor is a mock implementation of ports.Transactor. By default it
// just invokes fn with the same context, as if every call already commits;
// tests that care about rollback-on-error set WithinTransactionFunc.
type MockTransactor struct {
	WithinTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithinTransactionFunc != nil {
		return m.WithinTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// MockEventBus is a mock implementation of ports.EventBus.
type MockEventBus struct {
	PublishFunc func(subject string, payload []byte) error
	Published   []string
}

func (m *MockEventBus) Publish(subject string, payload []byte) error {
	m.Published = append(m.Published, subject)
	if m.PublishFunc != nil {
		return m.PublishFunc(subject, payload)
	}
	return nil
}

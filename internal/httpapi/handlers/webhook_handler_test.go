package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/mocks"
	"github.com/seu-repo/csms/internal/ocpp/registry"
	"github.com/seu-repo/csms/internal/session"
)

func signedWebhookRequest(secret string, body []byte) (string, string) {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "." + string(body)))
	sig := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%s,v1=%s", ts, sig), ts
}

func TestWebhookHandlerRejectsMissingSecretConfig(t *testing.T) {
	svc := session.NewService(
		&mocks.MockStationRepository{}, &mocks.MockIntentRepository{}, &mocks.MockSessionRepository{},
		&mocks.MockStopCodeDeliveryRepository{}, &mocks.MockPaymentGateway{}, &mocks.MockNotifier{},
		&mocks.MockEventBus{}, &mocks.MockTransactor{}, registry.New(), session.Config{PublicBaseURL: "https://csms.example.com"}, zap.NewNop(),
	)
	h := NewWebhookHandler(svc, "", zap.NewNop())

	app := fiber.New()
	app.Post("/payments/stripe/webhook", h.Handle)

	req := httptest.NewRequest("POST", "/payments/stripe/webhook", bytes.NewReader([]byte(`{}`)))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503 when no webhook secret is configured, got %d", resp.StatusCode)
	}
}

func TestWebhookHandlerRejectsBadSignature(t *testing.T) {
	svc := session.NewService(
		&mocks.MockStationRepository{}, &mocks.MockIntentRepository{}, &mocks.MockSessionRepository{},
		&mocks.MockStopCodeDeliveryRepository{}, &mocks.MockPaymentGateway{}, &mocks.MockNotifier{},
		&mocks.MockEventBus{}, &mocks.MockTransactor{}, registry.New(), session.Config{PublicBaseURL: "https://csms.example.com"}, zap.NewNop(),
	)
	h := NewWebhookHandler(svc, "whsec_test", zap.NewNop())

	app := fiber.New()
	app.Post("/payments/stripe/webhook", h.Handle)

	req := httptest.NewRequest("POST", "/payments/stripe/webhook", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for a bad signature, got %d", resp.StatusCode)
	}
}

func TestWebhookHandlerAcceptsValidSignature(t *testing.T) {
	svc := session.NewService(
		&mocks.MockStationRepository{}, &mocks.MockIntentRepository{}, &mocks.MockSessionRepository{},
		&mocks.MockStopCodeDeliveryRepository{}, &mocks.MockPaymentGateway{}, &mocks.MockNotifier{},
		&mocks.MockEventBus{}, &mocks.MockTransactor{}, registry.New(), session.Config{PublicBaseURL: "https://csms.example.com"}, zap.NewNop(),
	)
	h := NewWebhookHandler(svc, "whsec_test", zap.NewNop())

	app := fiber.New()
	app.Post("/payments/stripe/webhook", h.Handle)

	body, _ := json.Marshal(map[string]string{"type": "payment_intent.created"})
	header, _ := signedWebhookRequest("whsec_test", body)

	req := httptest.NewRequest("POST", "/payments/stripe/webhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", header)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for a validly-signed, irrelevant event type, got %d", resp.StatusCode)
	}
}

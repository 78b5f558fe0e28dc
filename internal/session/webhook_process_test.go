package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/mocks"
	"github.com/seu-repo/csms/internal/ocpp/registry"
)

func completedEventBody(intentID string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"metadata": map[string]interface{}{"intent_id": intentID},
			},
		},
	})
	return body
}

func TestProcessWebhookIgnoresOtherEventTypes(t *testing.T) {
	svc := newTestService(&mocks.MockStationRepository{}, &mocks.MockIntentRepository{}, &mocks.MockSessionRepository{}, &mocks.MockPaymentGateway{}, &mocks.MockNotifier{}, &mocks.MockEventBus{})

	body, _ := json.Marshal(map[string]string{"type": "payment_intent.created"})
	result, err := svc.ProcessWebhook(context.Background(), body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Handled || result.Created {
		t.Errorf("expected Handled=true, Created=false for an irrelevant event, got %+v", result)
	}
}

func TestProcessWebhookUnknownIntentIsHandledNotError(t *testing.T) {
	intents := &mocks.MockIntentRepository{
		GetFunc: func(ctx context.Context, id string) (*domain.Intent, error) { return nil, nil },
	}
	svc := newTestService(&mocks.MockStationRepository{}, intents, &mocks.MockSessionRepository{}, &mocks.MockPaymentGateway{}, &mocks.MockNotifier{}, &mocks.MockEventBus{})

	result, err := svc.ProcessWebhook(context.Background(), completedEventBody("missing-intent"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Handled || result.Created {
		t.Errorf("expected Handled=true, Created=false for an unknown intent, got %+v", result)
	}
}

func TestProcessWebhookExpiredIntentPublishesExpiry(t *testing.T) {
	intent := &domain.Intent{ID: "intent-1", ExpiresAt: time.Now().Add(-time.Minute)}
	var updated *domain.Intent
	intents := &mocks.MockIntentRepository{
		GetFunc:    func(ctx context.Context, id string) (*domain.Intent, error) { return intent, nil },
		UpdateFunc: func(ctx context.Context, i *domain.Intent) error { updated = i; return nil },
	}
	events := &mocks.MockEventBus{}
	svc := newTestService(&mocks.MockStationRepository{}, intents, &mocks.MockSessionRepository{}, &mocks.MockPaymentGateway{}, &mocks.MockNotifier{}, events)

	result, err := svc.ProcessWebhook(context.Background(), completedEventBody("intent-1"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Handled || result.Created {
		t.Errorf("expected Handled=true, Created=false for an expired intent, got %+v", result)
	}
	if updated == nil || updated.Status != domain.IntentExpired {
		t.Error("expected the intent to be marked expired")
	}
	if len(events.Published) != 1 || events.Published[0] != "intent.expired" {
		t.Errorf("expected an intent.expired event to be published, got %v", events.Published)
	}
}

func TestProcessWebhookIdempotentWhenSessionAlreadyExists(t *testing.T) {
	intent := &domain.Intent{ID: "intent-1", ExpiresAt: time.Now().Add(domain.IntentTTL)}
	intents := &mocks.MockIntentRepository{
		GetFunc: func(ctx context.Context, id string) (*domain.Intent, error) { return intent, nil },
	}
	sessions := &mocks.MockSessionRepository{
		ByIntentFunc: func(ctx context.Context, intentID string) (*domain.Session, error) {
			return &domain.Session{ID: 1}, nil
		},
	}
	svc := newTestService(&mocks.MockStationRepository{}, intents, sessions, &mocks.MockPaymentGateway{}, &mocks.MockNotifier{}, &mocks.MockEventBus{})

	result, err := svc.ProcessWebhook(context.Background(), completedEventBody("intent-1"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Handled || result.Created {
		t.Errorf("expected Handled=true, Created=false when a session already exists, got %+v", result)
	}
}

func TestProcessWebhookCreatesSessionAndDeliversStopCode(t *testing.T) {
	intent := &domain.Intent{
		ID:          "intent-1",
		StationID:   "cp-1",
		ConnectorID: 1,
		Email:       "driver@example.com",
		ExpiresAt:   time.Now().Add(domain.IntentTTL),
	}
	intents := &mocks.MockIntentRepository{
		GetFunc:    func(ctx context.Context, id string) (*domain.Intent, error) { return intent, nil },
		UpdateFunc: func(ctx context.Context, i *domain.Intent) error { return nil },
	}
	var createdSession *domain.Session
	sessions := &mocks.MockSessionRepository{
		ByIntentFunc: func(ctx context.Context, intentID string) (*domain.Session, error) { return nil, nil },
		CreateFunc: func(ctx context.Context, s *domain.Session) error {
			s.ID = 7
			createdSession = s
			return nil
		},
	}
	notifier := &mocks.MockNotifier{}
	deliveries := &mocks.MockStopCodeDeliveryRepository{}

	svc := NewService(
		&mocks.MockStationRepository{},
		intents,
		sessions,
		deliveries,
		&mocks.MockPaymentGateway{},
		notifier,
		&mocks.MockEventBus{},
		&mocks.MockTransactor{},
		registry.New(),
		Config{PublicBaseURL: "https://csms.example.com"},
		zap.NewNop(),
	)

	result, err := svc.ProcessWebhook(context.Background(), completedEventBody("intent-1"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Handled || !result.Created {
		t.Errorf("expected Handled=true, Created=true, got %+v", result)
	}
	if createdSession == nil || createdSession.StopCodeHash == "" {
		t.Fatal("expected a session to be created with a stop code hash, never plaintext")
	}
	if createdSession.Email != "driver@example.com" {
		t.Errorf("expected the session to carry the intent's email, got %q", createdSession.Email)
	}
	if len(notifier.Sent) != 1 {
		t.Fatalf("expected exactly one stop-code delivery attempt, got %d", len(notifier.Sent))
	}
	if len(deliveries.Created) != 1 {
		t.Fatalf("expected exactly one delivery audit row, got %d", len(deliveries.Created))
	}
}

func TestProcessWebhookRunsExistenceCheckAndSessionInsertInsideTransaction(t *testing.T) {
	intent := &domain.Intent{
		ID:          "intent-1",
		StationID:   "cp-1",
		ConnectorID: 1,
		Email:       "driver@example.com",
		ExpiresAt:   time.Now().Add(domain.IntentTTL),
	}
	intents := &mocks.MockIntentRepository{
		GetFunc:    func(ctx context.Context, id string) (*domain.Intent, error) { return intent, nil },
		UpdateFunc: func(ctx context.Context, i *domain.Intent) error { return nil },
	}
	sessions := &mocks.MockSessionRepository{
		ByIntentFunc: func(ctx context.Context, intentID string) (*domain.Session, error) { return nil, nil },
		CreateFunc:   func(ctx context.Context, s *domain.Session) error { s.ID = 7; return nil },
	}
	var sawWithinTransaction bool
	tx := &mocks.MockTransactor{
		WithinTransactionFunc: func(ctx context.Context, fn func(ctx context.Context) error) error {
			sawWithinTransaction = true
			return fn(ctx)
		},
	}
	svc := NewService(
		&mocks.MockStationRepository{}, intents, sessions, &mocks.MockStopCodeDeliveryRepository{},
		&mocks.MockPaymentGateway{}, &mocks.MockNotifier{}, &mocks.MockEventBus{}, tx, registry.New(),
		Config{PublicBaseURL: "https://csms.example.com"}, zap.NewNop(),
	)

	result, err := svc.ProcessWebhook(context.Background(), completedEventBody("intent-1"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Created {
		t.Fatalf("expected the session to be created, got %+v", result)
	}
	if !sawWithinTransaction {
		t.Error("expected the existing-session check and session insert to run inside a transaction")
	}
}

func TestProcessWebhookAbortsWhenTransactionFails(t *testing.T) {
	intent := &domain.Intent{
		ID:          "intent-1",
		StationID:   "cp-1",
		ConnectorID: 1,
		Email:       "driver@example.com",
		ExpiresAt:   time.Now().Add(domain.IntentTTL),
	}
	intents := &mocks.MockIntentRepository{
		GetFunc: func(ctx context.Context, id string) (*domain.Intent, error) { return intent, nil },
	}
	var notified bool
	notifier := &mocks.MockNotifier{
		SendStopCodeFunc: func(ctx context.Context, email, code string) error { notified = true; return nil },
	}
	tx := &mocks.MockTransactor{
		WithinTransactionFunc: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return errors.New("db unavailable")
		},
	}
	svc := NewService(
		&mocks.MockStationRepository{}, intents, &mocks.MockSessionRepository{}, &mocks.MockStopCodeDeliveryRepository{},
		&mocks.MockPaymentGateway{}, notifier, &mocks.MockEventBus{}, tx, registry.New(),
		Config{PublicBaseURL: "https://csms.example.com"}, zap.NewNop(),
	)

	_, err := svc.ProcessWebhook(context.Background(), completedEventBody("intent-1"))
	if err == nil {
		t.Fatal("expected an error when the transaction fails")
	}
	if notified {
		t.Error("expected no stop-code delivery when the session was never committed")
	}
}

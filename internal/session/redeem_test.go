package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/mocks"
	"github.com/seu-repo/csms/internal/ocpp/frame"
	"github.com/seu-repo/csms/internal/ocpp/registry"
)

// fakeStopTransport accepts a RemoteStopTransaction call and immediately
// resolves it "Accepted" on the registry, mimicking a live station.
type fakeStopTransport struct {
	reg *registry.Registry
}

func (f *fakeStopTransport) WriteFrame(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var uniqueID string
	json.Unmarshal(raw[1], &uniqueID)
	go func() {
		payload, _ := json.Marshal(map[string]string{"status": "Accepted"})
		f.reg.ResolveResult("cp-1", uniqueID, &frame.CallResult{UniqueID: uniqueID, Payload: payload})
	}()
	return nil
}

func TestRedeemStopCodeNotFoundWhenSessionMissing(t *testing.T) {
	sessions := &mocks.MockSessionRepository{
		ByEmailAndStopCodeHashFunc: func(ctx context.Context, email, hash string) (*domain.Session, error) {
			return nil, nil
		},
	}
	svc := newTestService(&mocks.MockStationRepository{}, &mocks.MockIntentRepository{}, sessions, &mocks.MockPaymentGateway{}, &mocks.MockNotifier{}, &mocks.MockEventBus{})

	_, err := svc.RedeemStopCode(context.Background(), "driver@example.com", "ABCD1234")
	if err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRedeemStopCodeNotFoundWhenSessionAlreadyClosed(t *testing.T) {
	finished := time.Now()
	sessions := &mocks.MockSessionRepository{
		ByEmailAndStopCodeHashFunc: func(ctx context.Context, email, hash string) (*domain.Session, error) {
			return &domain.Session{ID: 1, StationID: "cp-1", FinishedAt: &finished}, nil
		},
	}
	svc := newTestService(&mocks.MockStationRepository{}, &mocks.MockIntentRepository{}, sessions, &mocks.MockPaymentGateway{}, &mocks.MockNotifier{}, &mocks.MockEventBus{})

	_, err := svc.RedeemStopCode(context.Background(), "driver@example.com", "ABCD1234")
	if err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound for an already-closed session, got %v", err)
	}
}

func TestRedeemStopCodeIssuesRemoteStop(t *testing.T) {
	sessions := &mocks.MockSessionRepository{
		ByEmailAndStopCodeHashFunc: func(ctx context.Context, email, hash string) (*domain.Session, error) {
			return &domain.Session{ID: 42, StationID: "cp-1"}, nil
		},
	}
	reg := registry.New()
	svc := NewService(
		&mocks.MockStationRepository{},
		&mocks.MockIntentRepository{},
		sessions,
		&mocks.MockStopCodeDeliveryRepository{},
		&mocks.MockPaymentGateway{},
		&mocks.MockNotifier{},
		&mocks.MockEventBus{},
		&mocks.MockTransactor{},
		reg,
		Config{PublicBaseURL: "https://csms.example.com"},
		zap.NewNop(),
	)
	reg.Register("cp-1", &fakeStopTransport{reg: reg})

	accepted, err := svc.RedeemStopCode(context.Background(), "driver@example.com", "ABCD1234")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !accepted {
		t.Error("expected the remote stop to be reported as accepted")
	}
}

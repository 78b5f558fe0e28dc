package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/mocks"
	"github.com/seu-repo/csms/internal/ocpp/frame"
	"github.com/seu-repo/csms/internal/ocpp/registry"
)

func newRemoteCallTestService(reg *registry.Registry) *Service {
	return NewService(
		&mocks.MockStationRepository{},
		&mocks.MockIntentRepository{},
		&mocks.MockSessionRepository{},
		&mocks.MockStopCodeDeliveryRepository{},
		&mocks.MockPaymentGateway{},
		&mocks.MockNotifier{},
		&mocks.MockEventBus{},
		&mocks.MockTransactor{},
		reg,
		Config{PublicBaseURL: "https://csms.example.com"},
		zap.NewNop(),
	)
}

func TestRemoteStartRejectedWhenStationNoTransport(t *testing.T) {
	svc := newRemoteCallTestService(registry.New())

	_, err := svc.remoteStart(context.Background(), "cp-unknown", 1, "ANON")
	if err != ErrNoTransport {
		t.Fatalf("expected ErrNoTransport, got %v", err)
	}
}

type rejectingTransport struct{ reg *registry.Registry }

func (r *rejectingTransport) WriteFrame(data []byte) error {
	var raw []json.RawMessage
	json.Unmarshal(data, &raw)
	var uniqueID string
	json.Unmarshal(raw[1], &uniqueID)
	go func() {
		payload, _ := json.Marshal(map[string]string{"status": "Rejected"})
		r.reg.ResolveResult("cp-1", uniqueID, &frame.CallResult{UniqueID: uniqueID, Payload: payload})
	}()
	return nil
}

func TestRemoteStartReportsStationRejection(t *testing.T) {
	reg := registry.New()
	reg.Register("cp-1", &rejectingTransport{reg: reg})
	svc := newRemoteCallTestService(reg)

	accepted, err := svc.remoteStart(context.Background(), "cp-1", 1, "ANON")
	if err != nil {
		t.Fatalf("expected no transport-level error, got %v", err)
	}
	if accepted {
		t.Error("expected a Rejected status to decode as not accepted")
	}
}

type callErrorTransport struct{ reg *registry.Registry }

func (c *callErrorTransport) WriteFrame(data []byte) error {
	var raw []json.RawMessage
	json.Unmarshal(data, &raw)
	var uniqueID string
	json.Unmarshal(raw[1], &uniqueID)
	go func() {
		c.reg.ResolveError("cp-1", uniqueID, &frame.CallError{UniqueID: uniqueID, ErrorCode: "InternalError", ErrorDescription: "boom"})
	}()
	return nil
}

func TestRemoteStopSurfacesStationCallError(t *testing.T) {
	reg := registry.New()
	reg.Register("cp-1", &callErrorTransport{reg: reg})
	svc := newRemoteCallTestService(reg)

	_, err := svc.remoteStop(context.Background(), "cp-1", 7)
	if err == nil {
		t.Fatal("expected an error when the station answers with a CALLERROR")
	}
}

type writeFailingTransport struct{}

func (writeFailingTransport) WriteFrame(data []byte) error {
	return errors.New("write failed")
}

func TestRemoteStartSurfacesTransportWriteError(t *testing.T) {
	reg := registry.New()
	reg.Register("cp-1", writeFailingTransport{})
	svc := newRemoteCallTestService(reg)

	_, err := svc.remoteStart(context.Background(), "cp-1", 1, "ANON")
	if err == nil {
		t.Fatal("expected an error when writing the outbound frame fails")
	}
}

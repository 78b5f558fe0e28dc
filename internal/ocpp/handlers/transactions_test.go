package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/mocks"
)

func TestStartTransactionClaimsExistingOpenSession(t *testing.T) {
	meterStart := int64(1000)
	existing := &domain.Session{ID: 7, StationID: "cp-1"}
	var updated *domain.Session
	sessions := &mocks.MockSessionRepository{
		OpenByStationConnectorFunc: func(ctx context.Context, stationID string, connectorID int) (*domain.Session, error) {
			return existing, nil
		},
		UpdateFunc: func(ctx context.Context, s *domain.Session) error { updated = s; return nil },
	}
	stations := &mocks.MockStationRepository{
		GetFunc:    func(ctx context.Context, id string) (*domain.Station, error) { return &domain.Station{ID: id}, nil },
		UpsertFunc: func(ctx context.Context, s *domain.Station) error { return nil },
	}
	h := NewStartTransaction(sessions, stations, zap.NewNop())

	body, _ := json.Marshal(map[string]interface{}{"connectorId": 1, "idTag": "ANON", "timestamp": "2026-01-01T00:00:00Z", "meterStart": meterStart})
	resp, err := h.Handle(context.Background(), "cp-1", body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	startResp := resp.(startTransactionResp)
	if startResp.TransactionID != 7 {
		t.Errorf("expected the claimed session's own id as transaction id, got %d", startResp.TransactionID)
	}
	if updated == nil || updated.TransactionID == nil || *updated.TransactionID != 7 {
		t.Fatal("expected the existing session to be assigned its own id as transaction id")
	}
}

func TestStartTransactionCreatesFreshSessionWhenNoneOpen(t *testing.T) {
	var created *domain.Session
	sessions := &mocks.MockSessionRepository{
		OpenByStationConnectorFunc: func(ctx context.Context, stationID string, connectorID int) (*domain.Session, error) {
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, s *domain.Session) error { s.ID = 42; created = s; return nil },
		UpdateFunc: func(ctx context.Context, s *domain.Session) error { return nil },
	}
	stations := &mocks.MockStationRepository{
		GetFunc:    func(ctx context.Context, id string) (*domain.Station, error) { return &domain.Station{ID: id}, nil },
		UpsertFunc: func(ctx context.Context, s *domain.Station) error { return nil },
	}
	h := NewStartTransaction(sessions, stations, zap.NewNop())

	body, _ := json.Marshal(map[string]interface{}{"connectorId": 1, "idTag": "ANON", "timestamp": "2026-01-01T00:00:00Z"})
	resp, err := h.Handle(context.Background(), "cp-1", body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created == nil {
		t.Fatal("expected a fresh session to be created")
	}
	startResp := resp.(startTransactionResp)
	if startResp.TransactionID != 42 {
		t.Errorf("expected the newly created session's id as transaction id, got %d", startResp.TransactionID)
	}
}

func TestStopTransactionFinalizesOpenSessionAndComputesEnergy(t *testing.T) {
	meterStart := int64(1000)
	open := &domain.Session{ID: 5, StationID: "cp-1", MeterStartWh: &meterStart}
	var updated *domain.Session
	txID := int64(5)
	open.TransactionID = &txID
	sessions := &mocks.MockSessionRepository{
		OpenByTransactionIDFunc: func(ctx context.Context, transactionID int64) (*domain.Session, error) { return open, nil },
		UpdateFunc:              func(ctx context.Context, s *domain.Session) error { updated = s; return nil },
	}
	stations := &mocks.MockStationRepository{
		GetFunc:    func(ctx context.Context, id string) (*domain.Station, error) { return &domain.Station{ID: id}, nil },
		UpsertFunc: func(ctx context.Context, s *domain.Station) error { return nil },
	}
	events := &mocks.MockEventBus{}
	h := NewStopTransaction(sessions, &mocks.MockMeterSampleRepository{}, stations, events, nil, 100.0, zap.NewNop())

	meterStop := int64(3000)
	body, _ := json.Marshal(map[string]interface{}{"transactionId": 5, "timestamp": "2026-01-01T01:00:00Z", "meterStop": meterStop})
	_, err := h.Handle(context.Background(), "cp-1", body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated == nil || updated.FinishedAt == nil {
		t.Fatal("expected the session to be finalized with FinishedAt set")
	}
	if updated.EnergyKWh == nil || *updated.EnergyKWh != 2.0 {
		t.Fatalf("expected 2.0 kWh of energy, got %v", updated.EnergyKWh)
	}
	if updated.CostHUF == nil || *updated.CostHUF != 200.0 {
		t.Fatalf("expected cost = 2.0kWh * 100 = 200, got %v", updated.CostHUF)
	}
	if len(events.Published) != 1 || events.Published[0] != "session.completed" {
		t.Errorf("expected a session.completed event, got %v", events.Published)
	}
}

func TestStopTransactionUnknownSessionIsSafeAck(t *testing.T) {
	sessions := &mocks.MockSessionRepository{
		OpenByTransactionIDFunc: func(ctx context.Context, transactionID int64) (*domain.Session, error) { return nil, nil },
		GetFunc:                 func(ctx context.Context, id int64) (*domain.Session, error) { return nil, nil },
	}
	h := NewStopTransaction(sessions, &mocks.MockMeterSampleRepository{}, &mocks.MockStationRepository{}, &mocks.MockEventBus{}, nil, 0, zap.NewNop())

	body, _ := json.Marshal(map[string]interface{}{"transactionId": 999, "timestamp": "2026-01-01T01:00:00Z"})
	resp, err := h.Handle(context.Background(), "cp-1", body)
	if err != nil {
		t.Fatalf("expected a safe ack, got error %v", err)
	}
	if _, ok := resp.(stopTransactionResp); !ok {
		t.Fatalf("expected a stopTransactionResp, got %T", resp)
	}
}

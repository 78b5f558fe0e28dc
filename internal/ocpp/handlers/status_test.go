package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/adapter/ws"
	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/mocks"
)

func TestStatusUpsertsNormalizedStatus(t *testing.T) {
	station := &domain.Station{ID: "cp-1", Status: domain.StationPreparing}
	var upserted *domain.Station
	stations := &mocks.MockStationRepository{
		GetFunc:    func(ctx context.Context, id string) (*domain.Station, error) { return station, nil },
		UpsertFunc: func(ctx context.Context, s *domain.Station) error { upserted = s; return nil },
	}
	sessions := &mocks.MockSessionRepository{}
	h := NewStatus(stations, sessions, nil, zap.NewNop())

	_, err := h.Handle(context.Background(), "cp-1", json.RawMessage(`{"connectorId":1,"status":"Charging"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if upserted == nil || upserted.Status != domain.StationCharging {
		t.Fatalf("expected status to be normalized to charging, got %+v", upserted)
	}
}

func TestStatusSuppressesAvailableTransitionWhileSessionOpen(t *testing.T) {
	station := &domain.Station{ID: "cp-1", Status: domain.StationCharging}
	var upserted *domain.Station
	stations := &mocks.MockStationRepository{
		GetFunc:    func(ctx context.Context, id string) (*domain.Station, error) { return station, nil },
		UpsertFunc: func(ctx context.Context, s *domain.Station) error { upserted = s; return nil },
	}
	sessions := &mocks.MockSessionRepository{
		OpenByStationFunc: func(ctx context.Context, stationID string) (*domain.Session, error) {
			return &domain.Session{ID: 1}, nil
		},
	}
	h := NewStatus(stations, sessions, nil, zap.NewNop())

	_, err := h.Handle(context.Background(), "cp-1", json.RawMessage(`{"connectorId":1,"status":"Available"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if upserted.Status != domain.StationCharging {
		t.Errorf("expected the available transition to be suppressed, got %q", upserted.Status)
	}
}

func TestStatusUnknownStationIsSafeAck(t *testing.T) {
	stations := &mocks.MockStationRepository{
		GetFunc: func(ctx context.Context, id string) (*domain.Station, error) { return nil, nil },
	}
	h := NewStatus(stations, &mocks.MockSessionRepository{}, nil, zap.NewNop())

	_, err := h.Handle(context.Background(), "cp-unknown", json.RawMessage(`{"connectorId":1,"status":"Available"}`))
	if err != nil {
		t.Fatalf("expected a safe ack for an unknown station, got %v", err)
	}
}

func TestStatusDoesNotBlockWhenHubIsRunning(t *testing.T) {
	station := &domain.Station{ID: "cp-1", Status: domain.StationPreparing}
	stations := &mocks.MockStationRepository{
		GetFunc:    func(ctx context.Context, id string) (*domain.Station, error) { return station, nil },
		UpsertFunc: func(ctx context.Context, s *domain.Station) error { return nil },
	}
	hub := ws.NewHub()
	go hub.Run()
	h := NewStatus(stations, &mocks.MockSessionRepository{}, hub, zap.NewNop())

	done := make(chan struct{})
	go func() {
		h.Handle(context.Background(), "cp-1", json.RawMessage(`{"connectorId":1,"status":"Charging"}`))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected Handle to return once the hub drains the broadcast")
	}
}

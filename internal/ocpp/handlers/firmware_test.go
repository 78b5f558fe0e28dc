package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/mocks"
)

func TestFirmwareTouchesStationOnInstalled(t *testing.T) {
	station := &domain.Station{ID: "cp-1"}
	var upserted *domain.Station
	stations := &mocks.MockStationRepository{
		GetFunc:    func(ctx context.Context, id string) (*domain.Station, error) { return station, nil },
		UpsertFunc: func(ctx context.Context, s *domain.Station) error { upserted = s; return nil },
	}
	h := NewFirmware(stations, zap.NewNop())

	_, err := h.Handle(context.Background(), "cp-1", json.RawMessage(`{"status":"Installed"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if upserted == nil || upserted.LastSeenAt.IsZero() {
		t.Fatal("expected the station to be touched")
	}
}

func TestFirmwareUnknownStationIsSafeAck(t *testing.T) {
	stations := &mocks.MockStationRepository{
		GetFunc: func(ctx context.Context, id string) (*domain.Station, error) { return nil, nil },
	}
	h := NewFirmware(stations, zap.NewNop())

	_, err := h.Handle(context.Background(), "cp-unknown", json.RawMessage(`{"status":"Installing"}`))
	if err != nil {
		t.Fatalf("expected a safe ack for an unknown station, got %v", err)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/mocks"
)

func TestHeartbeatTouchesLastSeenAt(t *testing.T) {
	station := &domain.Station{ID: "cp-1"}
	var upserted *domain.Station
	stations := &mocks.MockStationRepository{
		GetFunc:    func(ctx context.Context, id string) (*domain.Station, error) { return station, nil },
		UpsertFunc: func(ctx context.Context, s *domain.Station) error { upserted = s; return nil },
	}
	h := NewHeartbeat(stations, zap.NewNop())

	resp, err := h.Handle(context.Background(), "cp-1", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := resp.(heartbeatResp); !ok {
		t.Fatalf("expected a heartbeatResp, got %T", resp)
	}
	if upserted == nil || upserted.LastSeenAt.IsZero() {
		t.Fatal("expected last_seen_at to be touched")
	}
}

func TestHeartbeatStillAcksWhenStationUnknown(t *testing.T) {
	stations := &mocks.MockStationRepository{
		GetFunc: func(ctx context.Context, id string) (*domain.Station, error) { return nil, nil },
	}
	h := NewHeartbeat(stations, zap.NewNop())

	_, err := h.Handle(context.Background(), "cp-unknown", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("expected heartbeat to ack even for an unknown station, got %v", err)
	}
}

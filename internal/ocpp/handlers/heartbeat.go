package handlers

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/ports"
)

type heartbeatResp struct {
	CurrentTime string `json:"currentTime"`
}

// Heartbeat touches Station.LastSeenAt and replies with server time.
type Heartbeat struct {
	stations ports.StationRepository
	log      *zap.Logger
}

func NewHeartbeat(stations ports.StationRepository, log *zap.Logger) *Heartbeat {
	return &Heartbeat{stations: stations, log: log}
}

func (h *Heartbeat) Handle(ctx context.Context, stationID string, _ json.RawMessage) (interface{}, error) {
	now := time.Now().UTC()

	station, err := h.stations.Get(ctx, stationID)
	if err == nil && station != nil {
		station.LastSeenAt = now
		if err := h.stations.Upsert(ctx, station); err != nil {
			h.log.Warn("failed to touch last_seen_at on heartbeat", zap.Error(err))
		}
	}

	return heartbeatResp{CurrentTime: now.Format(time.RFC3339)}, nil
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/ports"
)

type firmwareStatusNotificationReq struct {
	Status string `json:"status"`
}

// Firmware implements FirmwareStatusNotification: logs the reported status
// (at info level when it is "Installed") and always touches last_seen_at,
// mirroring the touch-then-ack shape the other telemetry-only actions use.
// The station's FirmwareVersion is not changed here; BootNotification sets it.
type Firmware struct {
	stations ports.StationRepository
	log      *zap.Logger
}

func NewFirmware(stations ports.StationRepository, log *zap.Logger) *Firmware {
	return &Firmware{stations: stations, log: log}
}

func (h *Firmware) Handle(ctx context.Context, stationID string, payload json.RawMessage) (interface{}, error) {
	var req firmwareStatusNotificationReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("invalid FirmwareStatusNotification: %w", err)
	}

	station, err := h.stations.Get(ctx, stationID)
	if err != nil || station == nil {
		return struct{}{}, nil
	}

	station.LastSeenAt = time.Now().UTC()

	if req.Status == "Installed" {
		h.log.Info("firmware installed", zap.String("station_id", stationID))
	} else {
		h.log.Debug("firmware status notification",
			zap.String("station_id", stationID), zap.String("status", req.Status))
	}

	if err := h.stations.Upsert(ctx, station); err != nil {
		h.log.Warn("failed to touch station on firmware status", zap.Error(err))
	}

	return struct{}{}, nil
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/ports"
)

// HeartbeatIntervalSeconds is the interval offered to every station on
// BootNotification acceptance.
const HeartbeatIntervalSeconds = 60

type bootNotificationReq struct {
	ChargePointVendor       string `json:"chargePointVendor"`
	ChargePointModel        string `json:"chargePointModel"`
	ChargePointSerialNumber string `json:"chargePointSerialNumber,omitempty"`
	ChargeBoxSerialNumber   string `json:"chargeBoxSerialNumber,omitempty"`
	FirmwareVersion         string `json:"firmwareVersion,omitempty"`
}

type bootNotificationResp struct {
	Status      string `json:"status"`
	CurrentTime string `json:"currentTime"`
	Interval    int    `json:"interval"`
}

// Boot implements BootNotification: upsert Station, set status=available,
// touch last_seen_at. Idempotent under replay.
type Boot struct {
	stations ports.StationRepository
	log      *zap.Logger
}

func NewBoot(stations ports.StationRepository, log *zap.Logger) *Boot {
	return &Boot{stations: stations, log: log}
}

func (h *Boot) Handle(ctx context.Context, stationID string, payload json.RawMessage) (interface{}, error) {
	var req bootNotificationReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("invalid BootNotification: %w", err)
	}

	now := time.Now().UTC()
	existing, err := h.stations.Get(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("loading station: %w", err)
	}

	station := existing
	if station == nil {
		station = &domain.Station{ID: stationID, CreatedAt: now}
	}
	station.Vendor = req.ChargePointVendor
	station.Model = req.ChargePointModel
	if req.ChargePointSerialNumber != "" {
		station.Serial = req.ChargePointSerialNumber
	} else {
		station.Serial = req.ChargeBoxSerialNumber
	}
	station.FirmwareVersion = req.FirmwareVersion
	station.Status = domain.StationAvailable
	station.LastSeenAt = now

	if err := h.stations.Upsert(ctx, station); err != nil {
		return nil, fmt.Errorf("upserting station: %w", err)
	}

	h.log.Info("boot notification accepted",
		zap.String("station_id", stationID),
		zap.String("vendor", req.ChargePointVendor),
		zap.String("model", req.ChargePointModel),
	)

	return bootNotificationResp{
		Status:      "Accepted",
		CurrentTime: now.Format(time.RFC3339),
		Interval:    HeartbeatIntervalSeconds,
	}, nil
}

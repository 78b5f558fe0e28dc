package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/adapter/ws"
	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/ports"
)

type stationStatusEvent struct {
	Type        string `json:"type"`
	StationID   string `json:"station_id"`
	ConnectorID int    `json:"connector_id"`
	Status      string `json:"status"`
}

type statusNotificationReq struct {
	ConnectorID int    `json:"connectorId"`
	Status      string `json:"status"`
	ErrorCode   string `json:"errorCode,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// Status implements StatusNotification. Normalizes the station status to
// lowercase, but suppresses a transition to "available" while the station
// has any open Session — stations sometimes report Available mid-charge,
// and honoring that would lose the Charging view.
type Status struct {
	stations ports.StationRepository
	sessions ports.SessionRepository
	hub      *ws.Hub
	log      *zap.Logger
}

// NewStatus wires the admin live feed hub optionally: a nil hub just skips
// the broadcast, so tests can omit it.
func NewStatus(stations ports.StationRepository, sessions ports.SessionRepository, hub *ws.Hub, log *zap.Logger) *Status {
	return &Status{stations: stations, sessions: sessions, hub: hub, log: log}
}

func (h *Status) broadcast(stationID string, connectorID int, status domain.StationStatus) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(stationStatusEvent{
		Type:        "station.status",
		StationID:   stationID,
		ConnectorID: connectorID,
		Status:      string(status),
	})
	if err != nil {
		return
	}
	h.hub.Broadcast(payload)
}

func (h *Status) Handle(ctx context.Context, stationID string, payload json.RawMessage) (interface{}, error) {
	var req statusNotificationReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("invalid StatusNotification: %w", err)
	}

	station, err := h.stations.Get(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("loading station: %w", err)
	}
	if station == nil {
		return struct{}{}, nil
	}

	newStatus := domain.StationStatus(strings.ToLower(req.Status))

	if newStatus == domain.StationAvailable {
		open, err := h.sessions.OpenByStation(ctx, stationID)
		if err != nil {
			return nil, fmt.Errorf("checking open sessions: %w", err)
		}
		if open != nil {
			h.log.Debug("suppressing available transition while session open",
				zap.String("station_id", stationID))
			station.LastSeenAt = time.Now().UTC()
			err := h.stations.Upsert(ctx, station)
			if err == nil {
				h.broadcast(stationID, req.ConnectorID, station.Status)
			}
			return struct{}{}, err
		}
	}

	station.Status = newStatus
	station.LastSeenAt = time.Now().UTC()
	if err := h.stations.Upsert(ctx, station); err != nil {
		return nil, fmt.Errorf("upserting station: %w", err)
	}
	h.broadcast(stationID, req.ConnectorID, station.Status)

	return struct{}{}, nil
}

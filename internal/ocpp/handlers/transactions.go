package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/adapter/ws"
	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/metrics"
	"github.com/seu-repo/csms/internal/ports"
)

type startTransactionReq struct {
	ConnectorID int    `json:"connectorId"`
	IdTag       string `json:"idTag"`
	Timestamp   string `json:"timestamp"`
	MeterStart  *int64 `json:"meterStart"`
}

type idTagInfo struct {
	Status string `json:"status"`
}

type startTransactionResp struct {
	TransactionID int64     `json:"transactionId"`
	IdTagInfo     idTagInfo `json:"idTagInfo"`
}

// StartTransaction implements the StartTransaction action: it reuses a
// Session pre-created by the Payment Bridge when one is open on this
// (station, connector), otherwise it creates one fresh.
type StartTransaction struct {
	sessions    ports.SessionRepository
	stationRepo ports.StationRepository
	log         *zap.Logger
}

func NewStartTransaction(sessions ports.SessionRepository, stations ports.StationRepository, log *zap.Logger) *StartTransaction {
	return &StartTransaction{sessions: sessions, stationRepo: stations, log: log}
}

func (h *StartTransaction) Handle(ctx context.Context, stationID string, payload json.RawMessage) (interface{}, error) {
	var req startTransactionReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("invalid StartTransaction: %w", err)
	}

	startedAt, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		startedAt = time.Now().UTC()
	}

	session, err := h.sessions.OpenByStationConnector(ctx, stationID, req.ConnectorID)
	if err != nil {
		return nil, fmt.Errorf("looking up open session: %w", err)
	}

	if session != nil {
		connectorID := req.ConnectorID
		if session.ConnectorID == nil {
			session.ConnectorID = &connectorID
		}
		if session.UserTag == nil && req.IdTag != "" {
			tag := req.IdTag
			session.UserTag = &tag
		}
		if session.StartedAt.IsZero() {
			session.StartedAt = startedAt
		}
		if session.TransactionID == nil {
			// The Session's own primary key becomes the station-facing
			// transactionId so StopTransaction's echo always correlates.
			txID := session.ID
			session.TransactionID = &txID
		}
		if req.MeterStart != nil && session.MeterStartWh == nil {
			session.MeterStartWh = req.MeterStart
		}
		if err := h.sessions.Update(ctx, session); err != nil {
			return nil, fmt.Errorf("updating session: %w", err)
		}
	} else {
		connectorID := req.ConnectorID
		var userTag *string
		if req.IdTag != "" {
			userTag = &req.IdTag
		}
		session = &domain.Session{
			StationID:    stationID,
			ConnectorID:  &connectorID,
			UserTag:      userTag,
			StartedAt:    startedAt,
			MeterStartWh: req.MeterStart,
		}
		if err := h.sessions.Create(ctx, session); err != nil {
			return nil, fmt.Errorf("creating session: %w", err)
		}
		metrics.OpenSessions.Inc()
		txID := session.ID
		session.TransactionID = &txID
		if err := h.sessions.Update(ctx, session); err != nil {
			return nil, fmt.Errorf("assigning transaction id: %w", err)
		}
	}

	station, err := h.stationRepo.Get(ctx, stationID)
	if err == nil && station != nil {
		station.Status = domain.StationCharging
		station.LastSeenAt = time.Now().UTC()
		if err := h.stationRepo.Upsert(ctx, station); err != nil {
			h.log.Warn("failed to mark station charging", zap.Error(err))
		}
	}

	h.log.Info("start transaction",
		zap.String("station_id", stationID),
		zap.Int64("transaction_id", session.EffectiveTransactionID()),
	)

	return startTransactionResp{
		TransactionID: session.EffectiveTransactionID(),
		IdTagInfo:     idTagInfo{Status: "Accepted"},
	}, nil
}

type stopTransactionReq struct {
	TransactionID int64  `json:"transactionId"`
	Timestamp     string `json:"timestamp"`
	MeterStop     *int64 `json:"meterStop"`
	Reason        string `json:"reason,omitempty"`
}

type stopTransactionResp struct {
	IdTagInfo idTagInfo `json:"idTagInfo"`
}

type sessionCompletedEvent struct {
	Type      string   `json:"type"`
	SessionID int64    `json:"session_id"`
	StationID string   `json:"station_id"`
	EnergyKWh *float64 `json:"energy_kwh,omitempty"`
	CostHUF   *float64 `json:"cost_huf,omitempty"`
}

// StopTransaction implements the StopTransaction action: finalizes the
// session, computing energy and (if a price is configured) cost.
type StopTransaction struct {
	sessions     ports.SessionRepository
	meterSamples ports.MeterSampleRepository
	stations     ports.StationRepository
	events       ports.EventBus
	hub          *ws.Hub
	pricePerKWh  float64
	log          *zap.Logger
}

// NewStopTransaction wires the admin live feed hub optionally: a nil hub
// just skips the broadcast, so tests can omit it.
func NewStopTransaction(sessions ports.SessionRepository, meterSamples ports.MeterSampleRepository, stations ports.StationRepository, events ports.EventBus, hub *ws.Hub, pricePerKWh float64, log *zap.Logger) *StopTransaction {
	return &StopTransaction{sessions: sessions, meterSamples: meterSamples, stations: stations, events: events, hub: hub, pricePerKWh: pricePerKWh, log: log}
}

func (h *StopTransaction) Handle(ctx context.Context, stationID string, payload json.RawMessage) (interface{}, error) {
	var req stopTransactionReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("invalid StopTransaction: %w", err)
	}

	session, err := h.sessions.OpenByTransactionID(ctx, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("looking up session by transaction id: %w", err)
	}
	if session == nil {
		// Some stations echo back the raw integer we handed them as the
		// Session's own primary key rather than as the assigned
		// transaction id.
		session, err = h.sessions.Get(ctx, req.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("looking up session by primary key: %w", err)
		}
	}
	if session == nil || !session.Open() {
		h.log.Warn("stop transaction for unknown or already-closed session",
			zap.String("station_id", stationID), zap.Int64("transaction_id", req.TransactionID))
		return stopTransactionResp{IdTagInfo: idTagInfo{Status: "Accepted"}}, nil
	}

	finishedAt, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		finishedAt = time.Now().UTC()
	}
	session.FinishedAt = &finishedAt
	session.MeterStopWh = req.MeterStop

	h.computeEnergyAndCost(ctx, session)

	if err := h.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("finalizing session: %w", err)
	}
	metrics.OpenSessions.Dec()

	if payload, err := json.Marshal(sessionCompletedEvent{
		Type:      "session.completed",
		SessionID: session.ID,
		StationID: stationID,
		EnergyKWh: session.EnergyKWh,
		CostHUF:   session.CostHUF,
	}); err == nil {
		if err := h.events.Publish("session.completed", payload); err != nil {
			h.log.Warn("failed to publish session.completed event", zap.Error(err))
		}
		if h.hub != nil {
			h.hub.Broadcast(payload)
		}
	}

	station, err := h.stations.Get(ctx, stationID)
	if err == nil && station != nil {
		station.Status = domain.StationAvailable
		station.LastSeenAt = time.Now().UTC()
		if err := h.stations.Upsert(ctx, station); err != nil {
			h.log.Warn("failed to mark station available", zap.Error(err))
		}
	}

	h.log.Info("stop transaction",
		zap.String("station_id", stationID),
		zap.Int64("transaction_id", session.EffectiveTransactionID()),
	)

	return stopTransactionResp{IdTagInfo: idTagInfo{Status: "Accepted"}}, nil
}

// computeEnergyAndCost fills EnergyKWh/CostHUF on session, preferring
// meter_stop_wh - meter_start_wh, falling back to the first/last MeterSample
// readings attached to this session when meter_start_wh is absent.
func (h *StopTransaction) computeEnergyAndCost(ctx context.Context, session *domain.Session) {
	var startWh, stopWh *int64

	if session.MeterStartWh != nil {
		startWh = session.MeterStartWh
		stopWh = session.MeterStopWh
	} else {
		first, last, err := h.meterSamples.FirstAndLastEnergyWh(ctx, session.ID)
		if err != nil {
			h.log.Warn("failed to load meter samples for energy fallback", zap.Error(err))
			return
		}
		startWh = first
		if last != nil {
			stopWh = last
		} else {
			stopWh = session.MeterStopWh
		}
	}

	if startWh == nil || stopWh == nil {
		return
	}

	deltaWh := *stopWh - *startWh
	if deltaWh < 0 {
		h.log.Warn("negative energy delta on stop transaction, leaving energy_kwh null",
			zap.Int64("session_id", session.ID), zap.Int64("meter_start_wh", *startWh), zap.Int64("meter_stop_wh", *stopWh))
		return
	}

	energyKWh := float64(deltaWh) / 1000.0
	session.EnergyKWh = &energyKWh

	if h.pricePerKWh > 0 {
		cost := energyKWh * h.pricePerKWh
		session.CostHUF = &cost
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/ports"
)

const (
	measurandEnergyRegister = "Energy.Active.Import.Register"
	measurandPower          = "Power.Active.Import"
	measurandCurrent        = "Current.Import"

	chargingPowerThresholdW   = 10.0
	chargingCurrentThresholdA = 0.1
)

type sampledValue struct {
	Value     string `json:"value"`
	Measurand string `json:"measurand,omitempty"`
	Phase     string `json:"phase,omitempty"`
	Unit      string `json:"unit,omitempty"`
}

type meterValue struct {
	Timestamp     string         `json:"timestamp"`
	SampledValue  []sampledValue `json:"sampledValue"`
}

type meterValuesReq struct {
	ConnectorID   int          `json:"connectorId"`
	TransactionID *int64       `json:"transactionId,omitempty"`
	MeterValue    []meterValue `json:"meterValue"`
}

// MeterValues implements the MeterValues action: binds each meterValue
// entry to the right open Session (by the §4.D preference order), persists
// a MeterSample, and updates the session's live progress.
type MeterValues struct {
	sessions     ports.SessionRepository
	meterSamples ports.MeterSampleRepository
	stations     ports.StationRepository
	log          *zap.Logger
}

func NewMeterValues(sessions ports.SessionRepository, meterSamples ports.MeterSampleRepository, stations ports.StationRepository, log *zap.Logger) *MeterValues {
	return &MeterValues{sessions: sessions, meterSamples: meterSamples, stations: stations, log: log}
}

func (h *MeterValues) Handle(ctx context.Context, stationID string, payload json.RawMessage) (interface{}, error) {
	var req meterValuesReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("invalid MeterValues: %w", err)
	}

	session, err := h.resolveSession(ctx, stationID, req.ConnectorID, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("resolving session: %w", err)
	}

	var lastEnergyWh *int64
	var lastPowerW, lastCurrentA *float64

	for _, mv := range req.MeterValue {
		ts, err := time.Parse(time.RFC3339, mv.Timestamp)
		if err != nil {
			ts = time.Now().UTC()
		}

		energyWh := extractAggregate(mv.SampledValue, measurandEnergyRegister)
		powerW := extractAggregate(mv.SampledValue, measurandPower)
		currentA := extractAggregate(mv.SampledValue, measurandCurrent)

		sample := &domain.MeterSample{
			StationID:   stationID,
			ConnectorID: req.ConnectorID,
			Timestamp:   ts,
		}
		if session != nil {
			sessionID := session.ID
			sample.SessionID = &sessionID
		}
		if energyWh != nil {
			wh := int64(*energyWh)
			sample.EnergyWh = &wh
			lastEnergyWh = &wh
		}
		if powerW != nil {
			sample.PowerW = powerW
			lastPowerW = powerW
		}
		if currentA != nil {
			sample.CurrentA = currentA
			lastCurrentA = currentA
		}

		if err := h.meterSamples.Create(ctx, sample); err != nil {
			return nil, fmt.Errorf("persisting meter sample: %w", err)
		}
	}

	if session != nil && lastEnergyWh != nil {
		session.MeterStopWh = lastEnergyWh
		if session.MeterStartWh != nil {
			deltaWh := *lastEnergyWh - *session.MeterStartWh
			if deltaWh >= 0 {
				energyKWh := float64(deltaWh) / 1000.0
				session.EnergyKWh = &energyKWh
			}
		}
		if err := h.sessions.Update(ctx, session); err != nil {
			h.log.Warn("failed to update session live progress", zap.Error(err))
		}
	}

	h.touchStation(ctx, stationID, lastPowerW, lastCurrentA)

	return struct{}{}, nil
}

// resolveSession implements §4.D's preference order: transaction id match,
// then (station, connector), then connector-0-means-1 retry, then any open
// session on the station.
func (h *MeterValues) resolveSession(ctx context.Context, stationID string, connectorID int, transactionID *int64) (*domain.Session, error) {
	if transactionID != nil {
		s, err := h.sessions.OpenByTransactionID(ctx, *transactionID)
		if err != nil {
			return nil, err
		}
		if s != nil {
			return s, nil
		}
	}

	s, err := h.sessions.OpenByStationConnector(ctx, stationID, connectorID)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}

	if connectorID == 0 {
		s, err = h.sessions.OpenByStationConnector(ctx, stationID, 1)
		if err != nil {
			return nil, err
		}
		if s != nil {
			return s, nil
		}
	}

	return h.sessions.OpenByStation(ctx, stationID)
}

func (h *MeterValues) touchStation(ctx context.Context, stationID string, powerW, currentA *float64) {
	station, err := h.stations.Get(ctx, stationID)
	if err != nil || station == nil {
		return
	}
	station.LastSeenAt = time.Now().UTC()
	if (powerW != nil && *powerW > chargingPowerThresholdW) || (currentA != nil && *currentA > chargingCurrentThresholdA) {
		station.Status = domain.StationCharging
	}
	if err := h.stations.Upsert(ctx, station); err != nil {
		h.log.Warn("failed to touch station on meter values", zap.Error(err))
	}
}

// extractAggregate implements the aggregate rule: a non-phase entry for the
// measurand wins outright; otherwise the per-phase entries are summed.
func extractAggregate(values []sampledValue, measurand string) *float64 {
	var sum float64
	found := false

	for _, v := range values {
		if v.Measurand != "" && v.Measurand != measurand {
			continue
		}
		if v.Measurand == "" && measurand != measurandEnergyRegister {
			// An entry with no measurand defaults to Energy.Active.Import.Register
			// per OCPP 1.6; only match it for that measurand.
			continue
		}

		n, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			continue
		}

		if v.Phase == "" {
			val := n
			return &val
		}
		sum += n
		found = true
	}

	if !found {
		return nil
	}
	return &sum
}

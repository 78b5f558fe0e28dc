package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/metrics"
	"github.com/seu-repo/csms/internal/ocpp/frame"
)

// remoteCallTimeout bounds how long the Payment Bridge waits for a station
// to answer an outbound RemoteStartTransaction/RemoteStopTransaction CALL.
const remoteCallTimeout = 12 * time.Second

// ErrNoTransport is returned when the target station has no live connection.
var ErrNoTransport = errors.New("no active transport for station")

// ErrRemoteCallTimeout is returned when the station doesn't answer within
// remoteCallTimeout or its transport tears down mid-call.
var ErrRemoteCallTimeout = errors.New("ocpp remote call timed out")

type remoteStartPayload struct {
	ConnectorID int    `json:"connectorId"`
	IdTag       string `json:"idTag"`
}

type remoteStopPayload struct {
	TransactionID int64 `json:"transactionId"`
}

// callRemote implements the outbound CALL protocol shared by
// RemoteStartTransaction and RemoteStopTransaction: allocate a request id,
// install a waiter, write the frame, and await the reply with a fixed
// timeout. The waiter is always removed from the correlation table before
// returning, whichever way it resolves.
func (s *Service) callRemote(ctx context.Context, stationID, action string, payload interface{}) (*frame.CallResult, error) {
	transport, ok := s.registry.Get(stationID)
	if !ok {
		return nil, ErrNoTransport
	}

	requestID := s.registry.AllocateRequestID(stationID)
	waiter := s.registry.InstallWaiter(stationID, requestID)
	start := time.Now()

	data, err := frame.EncodeCall(requestID, action, payload)
	if err != nil {
		s.registry.CancelWaiter(stationID, requestID, waiter)
		return nil, fmt.Errorf("encoding %s call: %w", action, err)
	}

	if err := transport.WriteFrame(data); err != nil {
		s.registry.CancelWaiter(stationID, requestID, waiter)
		return nil, fmt.Errorf("writing %s call: %w", action, err)
	}
	metrics.RecordFrame(action, "outbound")

	timer := time.NewTimer(remoteCallTimeout)
	defer timer.Stop()

	select {
	case outcome := <-waiter.Chan():
		elapsed := time.Since(start).Seconds()
		if res, ok := outcome.Result(); ok {
			metrics.RecordOutboundCall(action, "accepted", elapsed)
			return res, nil
		}
		if ce, ok := outcome.CallErr(); ok {
			metrics.RecordOutboundCall(action, "error", elapsed)
			return nil, fmt.Errorf("station rejected %s: %w", action, ce)
		}
		metrics.RecordOutboundCall(action, "cancelled", elapsed)
		return nil, ErrRemoteCallTimeout
	case <-timer.C:
		s.registry.CancelWaiter(stationID, requestID, waiter)
		metrics.RecordOutboundCall(action, "timeout", time.Since(start).Seconds())
		return nil, ErrRemoteCallTimeout
	case <-ctx.Done():
		s.registry.CancelWaiter(stationID, requestID, waiter)
		return nil, ctx.Err()
	}
}

// remoteStart issues RemoteStartTransaction and reports whether the station
// accepted it.
func (s *Service) remoteStart(ctx context.Context, stationID string, connectorID int, idTag string) (bool, error) {
	res, err := s.callRemote(ctx, stationID, "RemoteStartTransaction", remoteStartPayload{
		ConnectorID: connectorID,
		IdTag:       idTag,
	})
	if err != nil {
		return false, err
	}
	return decodeAccepted(res.Payload)
}

// remoteStop issues RemoteStopTransaction and reports whether the station
// accepted it.
func (s *Service) remoteStop(ctx context.Context, stationID string, transactionID int64) (bool, error) {
	res, err := s.callRemote(ctx, stationID, "RemoteStopTransaction", remoteStopPayload{
		TransactionID: transactionID,
	})
	if err != nil {
		return false, err
	}
	return decodeAccepted(res.Payload)
}

func decodeAccepted(payload json.RawMessage) (bool, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return false, fmt.Errorf("decoding remote call response: %w", err)
	}
	return resp.Status == "Accepted", nil
}

func (s *Service) logRemoteCallFailure(stationID, action string, err error) {
	s.log.Warn("outbound remote call failed",
		zap.String("station_id", stationID),
		zap.String("action", action),
		zap.Error(err),
	)
}

// Package dispatcher implements the Action Dispatcher: routing inbound
// CALLs by action name to Domain Handlers and uniformly formatting
// CALLRESULT replies.
package dispatcher

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/metrics"
)

// HandlerFunc implements one OCPP action's domain semantics. stationID is
// the identity the Gateway resolved for this connection (possibly just
// learned from this very BootNotification). The returned value is marshaled
// as the CALLRESULT payload; a non-nil error becomes a safe-ack `{}`
// per spec.md's permissive-acknowledgment policy — the dispatcher itself
// never rejects at the transport level.
type HandlerFunc func(ctx context.Context, stationID string, payload json.RawMessage) (interface{}, error)

// Dispatcher is a registration map built once at wiring time, mirroring the
// action-name switch an OCPP 1.6 handler traditionally uses, but splitting
// each case into its own independently testable handler file.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	log      *zap.Logger
}

func New(log *zap.Logger) *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc), log: log}
}

// Register binds an action name to its handler. Call once per action at
// wiring time.
func (d *Dispatcher) Register(action string, fn HandlerFunc) {
	d.handlers[action] = fn
}

// Dispatch runs the handler for action, if one is registered. Unknown
// actions and handler errors both resolve to a safe `{}` ack, matching
// spec.md §4.A's failure semantics: a bad domain event must not flap the
// station connection.
func (d *Dispatcher) Dispatch(ctx context.Context, stationID, action string, payload json.RawMessage) interface{} {
	metrics.RecordFrame(action, "inbound")

	fn, ok := d.handlers[action]
	if !ok {
		d.log.Debug("no handler registered for action, safe-acking", zap.String("action", action))
		return struct{}{}
	}

	result, err := fn(ctx, stationID, payload)
	if err != nil {
		d.log.Warn("handler returned error, safe-acking",
			zap.String("action", action),
			zap.String("station_id", stationID),
			zap.Error(err),
		)
		return struct{}{}
	}
	return result
}

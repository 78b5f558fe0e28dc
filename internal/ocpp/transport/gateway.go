package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/metrics"
	"github.com/seu-repo/csms/internal/ocpp/dispatcher"
	"github.com/seu-repo/csms/internal/ocpp/frame"
	"github.com/seu-repo/csms/internal/ocpp/registry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:  func(r *http.Request) bool { return true },
	Subprotocols: []string{"ocpp1.6"},
}

// bootPayload is the subset of BootNotification fields the Gateway itself
// needs to resolve a station identity on the legacy (no-path-id) endpoint.
type bootPayload struct {
	ChargeBoxSerialNumber   string `json:"chargeBoxSerialNumber"`
	ChargePointSerialNumber string `json:"chargePointSerialNumber"`
}

// Gateway accepts station WebSocket connections and runs their read loops.
type Gateway struct {
	registry   *registry.Registry
	dispatcher *dispatcher.Dispatcher
	log        *zap.Logger
}

func NewGateway(reg *registry.Registry, disp *dispatcher.Dispatcher, log *zap.Logger) *Gateway {
	return &Gateway{registry: reg, dispatcher: disp, log: log}
}

// HandleIdentified serves /ocpp/1.6/{stationId}: identity is embedded in the
// path, known before the first frame arrives.
func (g *Gateway) HandleIdentified(identity string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.serve(w, r, identity)
	}
}

// HandleLegacy serves /ocpp/1.6/ with no trailing identity: the station is
// resolved from the first BootNotification's payload.
func (g *Gateway) HandleLegacy(w http.ResponseWriter, r *http.Request) {
	g.serve(w, r, "")
}

func (g *Gateway) serve(w http.ResponseWriter, r *http.Request, identity string) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	conn := NewConn(ws)

	if identity != "" {
		g.registry.Register(identity, conn)
		metrics.ConnectedStations.Inc()
		g.log.Info("station connected", zap.String("station_id", identity))
	}

	defer func() {
		conn.Close()
		if identity != "" {
			g.registry.UnregisterIfSame(identity, conn)
			metrics.ConnectedStations.Dec()
			g.log.Info("station disconnected", zap.String("station_id", identity))
		}
	}()

	g.readLoop(r.Context(), conn, &identity)
}

// readLoop processes frames on one connection strictly in arrival order;
// handler work for this connection is never overlapped with itself.
func (g *Gateway) readLoop(ctx context.Context, conn *Conn, identity *string) {
	for {
		raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		g.processFrame(ctx, conn, identity, raw)
	}
}

func (g *Gateway) processFrame(ctx context.Context, conn *Conn, identity *string, raw []byte) {
	msgType, uniqueID, rest, err := frame.Parse(raw)
	if err != nil {
		g.log.Warn("malformed ocpp frame, ignoring", zap.Error(err))
		return
	}

	switch msgType {
	case frame.TypeCallResult:
		res, err := frame.ParseCallResult(uniqueID, rest)
		if err != nil {
			g.log.Warn("malformed callresult frame, ignoring", zap.Error(err))
			return
		}
		if *identity != "" {
			g.registry.ResolveResult(*identity, uniqueID, res)
		}

	case frame.TypeCallError:
		ce, err := frame.ParseCallError(uniqueID, rest)
		if err != nil {
			g.log.Warn("malformed callerror frame, ignoring", zap.Error(err))
			return
		}
		if *identity != "" {
			g.registry.ResolveError(*identity, uniqueID, ce)
		}

	case frame.TypeCall:
		call, err := frame.ParseCall(uniqueID, rest)
		if err != nil {
			g.log.Warn("malformed call frame, ignoring", zap.Error(err))
			return
		}
		g.handleCall(ctx, conn, identity, call)

	default:
		g.log.Debug("ignoring frame with unknown type", zap.Int("type", msgType))
	}
}

func (g *Gateway) handleCall(ctx context.Context, conn *Conn, identity *string, call *frame.Call) {
	if *identity == "" {
		if call.Action != "BootNotification" {
			g.log.Warn("call from unidentified station before BootNotification, safe-acking",
				zap.String("action", call.Action))
			g.writeSafeAck(conn, call.UniqueID)
			return
		}
		resolved := resolveBootIdentity(call.Payload)
		if resolved == "" {
			g.log.Warn("BootNotification missing both serial number fields, safe-acking")
			g.writeSafeAck(conn, call.UniqueID)
			return
		}
		*identity = resolved
		g.registry.Register(*identity, conn)
		metrics.ConnectedStations.Inc()
		g.log.Info("station identified via BootNotification", zap.String("station_id", *identity))
	}

	result := g.dispatcher.Dispatch(ctx, *identity, call.Action, call.Payload)

	out, err := frame.EncodeCallResult(call.UniqueID, result)
	if err != nil {
		g.log.Error("failed to encode callresult", zap.Error(err))
		return
	}
	if err := conn.WriteFrame(out); err != nil {
		g.log.Warn("failed to write callresult", zap.Error(err))
	}
}

// writeSafeAck replies with a minimal {} CALLRESULT so the station's
// request id is always answered, even when identity couldn't be resolved.
// Dropping the reply (rather than just the connection) makes stations
// retry/flap the same way an unanswered domain event would.
func (g *Gateway) writeSafeAck(conn *Conn, uniqueID string) {
	out, err := frame.EncodeCallResult(uniqueID, struct{}{})
	if err != nil {
		g.log.Error("failed to encode safe-ack callresult", zap.Error(err))
		return
	}
	if err := conn.WriteFrame(out); err != nil {
		g.log.Warn("failed to write safe-ack callresult", zap.Error(err))
	}
}

func resolveBootIdentity(payload json.RawMessage) string {
	var p bootPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ""
	}
	if p.ChargeBoxSerialNumber != "" {
		return p.ChargeBoxSerialNumber
	}
	return p.ChargePointSerialNumber
}

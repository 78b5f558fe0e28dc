// Package metrics exposes the handful of Prometheus series this service
// cares about, trimmed from the teacher's much larger catalogue down to
// what the OCPP and Payment Bridge components actually move.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OCPPFramesTotal counts every OCPP frame processed, by action and
	// direction (inbound CALL from a station, outbound CALL to one).
	OCPPFramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csms_ocpp_frames_total",
		Help: "Total OCPP frames processed",
	}, []string{"action", "direction"})

	// ConnectedStations tracks the number of stations with a live transport.
	ConnectedStations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "csms_connected_stations",
		Help: "Number of stations with a live OCPP WebSocket connection",
	})

	// OpenSessions tracks the number of charging sessions with finished_at = null.
	OpenSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "csms_open_sessions",
		Help: "Number of open charging sessions",
	})

	// OutboundCallLatency tracks round-trip latency of outbound
	// RemoteStartTransaction/RemoteStopTransaction CALLs.
	OutboundCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "csms_outbound_call_duration_seconds",
		Help:    "Round-trip latency of outbound OCPP CALLs",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 12},
	}, []string{"action", "outcome"})
)

// RecordFrame increments the frame counter for an action/direction pair.
func RecordFrame(action, direction string) {
	OCPPFramesTotal.WithLabelValues(action, direction).Inc()
}

// RecordOutboundCall observes an outbound CALL's round-trip latency and outcome.
func RecordOutboundCall(action, outcome string, seconds float64) {
	OutboundCallLatency.WithLabelValues(action, outcome).Observe(seconds)
}

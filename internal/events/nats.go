// Package events publishes session-lifecycle notifications
// (session.completed, intent.expired) for downstream consumers. Optional:
// a nil-safe no-op bus is used when NATS is unconfigured, mirroring the
// teacher's optional-dependency main.go wiring.
package events

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/ports"
)

type natsBus struct {
	conn *nats.Conn
	log  *zap.Logger
}

func NewNATSBus(url string, log *zap.Logger) (ports.EventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	log.Info("connected to nats", zap.String("url", url))
	return &natsBus{conn: conn, log: log}, nil
}

func (b *natsBus) Publish(subject string, payload []byte) error {
	return b.conn.Publish(subject, payload)
}

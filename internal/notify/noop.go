package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/ports"
)

// noopNotifier logs the delivery intent instead of sending anything. Used
// when no SendGrid API key is configured, keeping the core functional with
// zero email configuration.
type noopNotifier struct {
	log *zap.Logger
}

func NewNoopNotifier(log *zap.Logger) ports.Notifier {
	return &noopNotifier{log: log}
}

func (n *noopNotifier) SendStopCode(_ context.Context, email, _ string) error {
	n.log.Info("stop code notifier not configured, skipping delivery", zap.String("email", email))
	return nil
}

package notify

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNoopNotifierSendStopCodeNeverErrors(t *testing.T) {
	n := NewNoopNotifier(zap.NewNop())
	if err := n.SendStopCode(context.Background(), "driver@example.com", "ABCD1234"); err != nil {
		t.Fatalf("expected the no-op notifier to never error, got %v", err)
	}
}

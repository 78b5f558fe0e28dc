package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCircuitBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	cb := New(Settings{FailureThreshold: 3, Timeout: time.Hour}, zap.NewNop())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := cb.ExecuteCtx(context.Background(), func(ctx context.Context) (interface{}, error) {
			return nil, boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected the underlying error to pass through, got %v", err)
		}
	}

	if cb.State() != StateOpen {
		t.Fatalf("expected the breaker to trip open after %d consecutive failures, got %s", 3, cb.State())
	}

	_, err := cb.ExecuteCtx(context.Background(), func(ctx context.Context) (interface{}, error) {
		t.Fatal("fn should not run while the breaker is open")
		return nil, nil
	})
	if !IsOpen(err) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreakerRecoversAfterTimeout(t *testing.T) {
	cb := New(Settings{FailureThreshold: 1, SuccessThreshold: 1, Timeout: 10 * time.Millisecond}, zap.NewNop())
	boom := errors.New("boom")

	_, _ = cb.ExecuteCtx(context.Background(), func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	if cb.State() != StateOpen {
		t.Fatalf("expected the breaker to be open after one failure, got %s", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	_, err := cb.ExecuteCtx(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("expected the half-open probe to succeed, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("expected the breaker to close after a successful probe, got %s", cb.State())
	}
}

func TestCircuitBreakerStaysClosedOnIntermittentSuccess(t *testing.T) {
	cb := New(Settings{FailureThreshold: 3}, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, _ = cb.ExecuteCtx(context.Background(), func(ctx context.Context) (interface{}, error) {
			if i%2 == 0 {
				return nil, errors.New("boom")
			}
			return "ok", nil
		})
	}

	if cb.State() != StateClosed {
		t.Fatalf("expected the breaker to stay closed when failures never run 3 in a row, got %s", cb.State())
	}
}

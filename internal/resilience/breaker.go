// Package resilience guards outbound calls to third-party providers (Stripe)
// with a circuit breaker so a provider outage fails fast instead of stacking
// up slow requests against REST callers.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// State mirrors gobreaker's closed/half-open/open state machine.
type State = gobreaker.State

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

var (
	ErrCircuitOpen     = gobreaker.ErrOpenState
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)

// Settings configures a CircuitBreaker. It's a thin, domain-named facade
// over gobreaker.Settings so call sites don't need to think in terms of
// gobreaker's ReadyToTrip callback.
type Settings struct {
	Name string

	// MaxRequests allowed through while half-open.
	MaxRequests uint32

	// Interval at which a closed breaker resets its counters.
	Interval time.Duration

	// Timeout is how long an open breaker stays open before probing again.
	Timeout time.Duration

	// FailureThreshold of consecutive failures that trips the breaker.
	FailureThreshold uint32

	// SuccessThreshold of consecutive half-open successes that closes it
	// again. gobreaker closes once MaxRequests trial calls in half-open all
	// succeed, so this widens MaxRequests when it's the larger of the two.
	SuccessThreshold uint32

	OnStateChange func(name string, from, to State)
}

// CircuitBreaker wraps gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	cb   *gobreaker.CircuitBreaker
	name string
}

// New creates a circuit breaker. Zero-valued settings fall back to sane
// defaults (5 consecutive failures trips, 30s open timeout).
func New(settings Settings, log *zap.Logger) *CircuitBreaker {
	failureThreshold := settings.FailureThreshold
	if failureThreshold == 0 {
		failureThreshold = 5
	}
	maxRequests := settings.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1
	}
	if settings.SuccessThreshold > maxRequests {
		maxRequests = settings.SuccessThreshold
	}
	interval := settings.Interval
	if interval == 0 {
		interval = 60 * time.Second
	}
	timeout := settings.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if settings.OnStateChange != nil {
				settings.OnStateChange(name, from, to)
			}
			if log != nil {
				log.Info("circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			}
		},
	})

	return &CircuitBreaker{cb: cb, name: settings.Name}
}

// ExecuteCtx runs fn if the breaker currently allows it.
func (cb *CircuitBreaker) ExecuteCtx(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	return cb.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
}

// State reports the breaker's current state.
func (cb *CircuitBreaker) State() State {
	return cb.cb.State()
}

func (cb *CircuitBreaker) Name() string { return cb.name }

// IsOpen reports whether err originated from a tripped breaker.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// Package registry implements the process-local Connection Registry: the
// station-identity -> transport map and the (station, request-id) -> waiter
// correlation table that outbound RemoteStart/RemoteStop calls wait on.
package registry

import (
	"strconv"
	"sync"

	"github.com/seu-repo/csms/internal/ocpp/frame"
)

// Transport is the minimal surface the registry needs from a live station
// connection: enough to send a frame and to compare identity on teardown.
type Transport interface {
	WriteFrame(data []byte) error
}

// waiterOutcome is what a Waiter ultimately receives: exactly one of these
// four outcomes fires before the waiter is removed from the correlation table.
type waiterOutcome struct {
	result    *frame.CallResult
	callError *frame.CallError
	timedOut  bool
	cancelled bool
}

// Waiter is a single-shot completion handle for one outbound CALL.
type Waiter struct {
	ch   chan waiterOutcome
	once sync.Once
}

func newWaiter() *Waiter {
	return &Waiter{ch: make(chan waiterOutcome, 1)}
}

// Chan returns the channel the outcome is delivered on; callers apply their
// own timeout by selecting on it (see session.remotecalls).
func (w *Waiter) Chan() <-chan waiterOutcome { return w.ch }

func (w *Waiter) complete(o waiterOutcome) {
	w.once.Do(func() {
		w.ch <- o
		close(w.ch)
	})
}

// Complete delivers a successful CALLRESULT payload.
func (w *Waiter) Complete(res *frame.CallResult) { w.complete(waiterOutcome{result: res}) }

// Fail delivers a CALLERROR payload.
func (w *Waiter) Fail(ce *frame.CallError) { w.complete(waiterOutcome{callError: ce}) }

// Timeout marks the waiter as timed out.
func (w *Waiter) Timeout() { w.complete(waiterOutcome{timedOut: true}) }

// Cancel marks the waiter as cancelled (e.g. transport teardown).
func (w *Waiter) Cancel() { w.complete(waiterOutcome{cancelled: true}) }

type pendingKey struct {
	identity  string
	requestID string
}

// Registry is the single process-local source of truth for which station
// has which live transport, and which outbound calls are awaiting a reply.
// All operations are short critical sections under one lock; the lock never
// spans I/O.
type Registry struct {
	mu       sync.Mutex
	conns    map[string]Transport
	pending  map[pendingKey]*Waiter
	counters map[string]int64
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		conns:    make(map[string]Transport),
		pending:  make(map[pendingKey]*Waiter),
		counters: make(map[string]int64),
	}
}

// Register installs (or replaces) the live transport for a station identity.
// A reconnect simply overwrites the stale handle; there is no callback to
// the prior holder.
func (r *Registry) Register(identity string, t Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[identity] = t
}

// UnregisterIfSame removes the registry entry only if it still points at t,
// so a late teardown goroutine never evicts a fresher reconnection.
func (r *Registry) UnregisterIfSame(identity string, t Transport) {
	r.mu.Lock()
	current, ok := r.conns[identity]
	if ok && current == t {
		delete(r.conns, identity)
	}
	var toCancel []*Waiter
	for k, w := range r.pending {
		if k.identity == identity {
			toCancel = append(toCancel, w)
			delete(r.pending, k)
		}
	}
	r.mu.Unlock()

	for _, w := range toCancel {
		w.Cancel()
	}
}

// Get returns the live transport for a station identity, if any.
func (r *Registry) Get(identity string) (Transport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.conns[identity]
	return t, ok
}

// requestIDSeed is where each station's per-station counter starts, chosen
// well above station-initiated ids (which are typically small decimal
// strings) to avoid collision.
const requestIDSeed = 900_000_000

// AllocateRequestID mints the next outbound request id for a station as a
// decimal string. Monotonic per station.
func (r *Registry) AllocateRequestID(identity string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.counters[identity]
	if !ok {
		n = requestIDSeed
	}
	n++
	r.counters[identity] = n
	return strconv.FormatInt(n, 10)
}

// InstallWaiter registers a waiter for (identity, requestID) and returns it.
func (r *Registry) InstallWaiter(identity, requestID string) *Waiter {
	w := newWaiter()
	r.mu.Lock()
	r.pending[pendingKey{identity, requestID}] = w
	r.mu.Unlock()
	return w
}

// removeWaiter drops the correlation entry if it still points at w.
func (r *Registry) removeWaiter(identity, requestID string, w *Waiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pendingKey{identity, requestID}
	if existing, ok := r.pending[key]; ok && existing == w {
		delete(r.pending, key)
	}
}

// ResolveResult looks up the waiter for (identity, requestID) and delivers a
// CALLRESULT, then removes the correlation entry. Unknown correlations are
// silently dropped.
func (r *Registry) ResolveResult(identity, requestID string, res *frame.CallResult) {
	r.mu.Lock()
	w, ok := r.pending[pendingKey{identity, requestID}]
	if ok {
		delete(r.pending, pendingKey{identity, requestID})
	}
	r.mu.Unlock()
	if ok {
		w.Complete(res)
	}
}

// ResolveError looks up the waiter for (identity, requestID) and delivers a
// CALLERROR, then removes the correlation entry. Unknown correlations are
// silently dropped.
func (r *Registry) ResolveError(identity, requestID string, ce *frame.CallError) {
	r.mu.Lock()
	w, ok := r.pending[pendingKey{identity, requestID}]
	if ok {
		delete(r.pending, pendingKey{identity, requestID})
	}
	r.mu.Unlock()
	if ok {
		w.Fail(ce)
	}
}

// CancelWaiter marks a still-pending waiter timed out and removes its
// correlation entry; safe to call after the waiter already completed.
func (r *Registry) CancelWaiter(identity, requestID string, w *Waiter) {
	r.removeWaiter(identity, requestID, w)
	w.Timeout()
}

// Outcome is the exported, read-only view of a waiterOutcome for session
// callers awaiting a Waiter's channel.
type Outcome = waiterOutcome

// Result reports the CALLRESULT payload, if that's what fired.
func (o Outcome) Result() (*frame.CallResult, bool) { return o.result, o.result != nil }

// CallErr reports the CALLERROR payload, if that's what fired.
func (o Outcome) CallErr() (*frame.CallError, bool) { return o.callError, o.callError != nil }

// TimedOut reports whether the waiter fired via timeout.
func (o Outcome) TimedOut() bool { return o.timedOut }

// Cancelled reports whether the waiter fired via cancellation.
func (o Outcome) Cancelled() bool { return o.cancelled }

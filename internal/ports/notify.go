package ports

import (
	"context"
	"time"
)

// Notifier delivers a plaintext stop-code to the payer out-of-band. A
// delivery failure is logged and recorded but never fails the webhook that
// triggered it.
type Notifier interface {
	SendStopCode(ctx context.Context, email, plaintextCode string) error
}

// EventBus publishes session lifecycle events for downstream consumers.
// Optional: a nil-safe no-op implementation is used when unconfigured.
type EventBus interface {
	Publish(subject string, payload []byte) error
}

// Cache is a short-TTL key/value store backing the GET /charge-points
// offline-projection read path. Optional.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/ports"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// LocalCache is an in-memory ports.Cache used when Redis isn't configured.
type LocalCache struct {
	data map[string]entry
	mu   sync.RWMutex
	log  *zap.Logger
}

func NewLocalCache(log *zap.Logger) ports.Cache {
	return &LocalCache{data: make(map[string]entry), log: log}
}

func (c *LocalCache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok {
		return "", fmt.Errorf("key not found: %s", key)
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(time.Now()) {
		return "", fmt.Errorf("key expired: %s", key)
	}
	return e.value, nil
}

func (c *LocalCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.data[key] = e
	return nil
}

func (c *LocalCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

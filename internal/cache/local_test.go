package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLocalCacheSetGetRoundTrip(t *testing.T) {
	c := NewLocalCache(zap.NewNop())

	if err := c.Set(context.Background(), "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v" {
		t.Errorf("expected %q, got %q", "v", got)
	}
}

func TestLocalCacheGetMissingKeyErrors(t *testing.T) {
	c := NewLocalCache(zap.NewNop())
	if _, err := c.Get(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error for a missing key")
	}
}

func TestLocalCacheExpiresAfterTTL(t *testing.T) {
	c := NewLocalCache(zap.NewNop())
	if err := c.Set(context.Background(), "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected the key to have expired")
	}
}

func TestLocalCacheDelete(t *testing.T) {
	c := NewLocalCache(zap.NewNop())
	_ = c.Set(context.Background(), "k", "v", 0)
	if err := c.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected the key to be gone after Delete")
	}
}

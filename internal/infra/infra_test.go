package infra

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("acme", 42)
	v, ok := c.Get("acme")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v.(int) != 42 {
		t.Errorf("expected 42, got %v", v)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)

	c.SetWithTTL("acme", 1, -time.Second)
	if _, ok := c.Get("acme"); ok {
		t.Error("expected expired entry to miss")
	}

	c.SetWithTTL("beta", 2, time.Minute)
	c.Cleanup()
	if _, ok := c.Get("beta"); !ok {
		t.Error("cleanup must keep live entries")
	}
}

func TestCacheInvalidateAndFlush(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected invalidated key to miss")
	}
	c.Flush()
	if _, ok := c.Get("b"); ok {
		t.Error("expected flushed cache to miss")
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)

	if !rl.Allow() || !rl.Allow() {
		t.Fatal("expected two immediate tokens")
	}
	if rl.Allow() {
		t.Error("expected bucket to be empty")
	}
}

func TestRateLimiterWaitCancelled(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first token should be free: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Error("expected context cancellation while starved")
	}
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/labelscan/backend/internal/domain"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", map[string]string{"answer": "42"}, time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	value, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	stored, ok := value.(map[string]interface{})
	if !ok {
		t.Fatalf("stored value has type %T, want map[string]interface{}", value)
	}
	if stored["answer"] != "42" {
		t.Errorf("stored value = %v, want answer 42", stored)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	if _, err := c.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get(missing) err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiration(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "short", "value", 20*time.Millisecond); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if _, err := c.Get(ctx, "short"); err != nil {
		t.Fatalf("Get before expiry returned error: %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get after expiry err = %v, want ErrCacheMiss", err)
	}

	exists, err := c.Exists(ctx, "short")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if exists {
		t.Error("Exists reports an expired key")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := c.Get(ctx, "key"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get after delete err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExists(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	exists, err := c.Exists(ctx, "key")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if exists {
		t.Error("Exists reports a key that was never set")
	}

	if err := c.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	exists, err = c.Exists(ctx, "key")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if !exists {
		t.Error("Exists misses a live key")
	}
}

func TestMemoryCacheSweep(t *testing.T) {
	c := &MemoryCache{
		data: make(map[string]cacheItem),
		stop: make(chan struct{}),
	}
	go c.sweep(10 * time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "doomed", "value", time.Millisecond); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := c.Set(ctx, "kept", "value", time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for c.Size() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("sweeper never evicted the expired entry, size = %d", c.Size())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMemoryCacheRejectsUnmarshalableValue(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	if err := c.Set(context.Background(), "bad", make(chan int), time.Minute); err == nil {
		t.Error("Set accepted a value JSON cannot encode")
	}
}

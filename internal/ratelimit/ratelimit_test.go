package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestMemoryCounter_Window(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewMemoryCounter()
	c.now = func() time.Time { return now }

	for i := int64(1); i <= 3; i++ {
		count, resetIn, err := c.Incr(context.Background(), "orders:1.2.3.4", 15*time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != i {
			t.Errorf("hit %d: count %d", i, count)
		}
		if resetIn != 15*time.Minute {
			t.Errorf("hit %d: resetIn %v", i, resetIn)
		}
	}

	now = now.Add(5 * time.Minute)
	count, resetIn, _ := c.Incr(context.Background(), "orders:1.2.3.4", 15*time.Minute)
	if count != 4 || resetIn != 10*time.Minute {
		t.Errorf("mid window: count %d resetIn %v", count, resetIn)
	}

	now = now.Add(10 * time.Minute)
	count, _, _ = c.Incr(context.Background(), "orders:1.2.3.4", 15*time.Minute)
	if count != 1 {
		t.Errorf("new window should restart at 1, got %d", count)
	}
}

func TestMemoryCounter_KeysAreIndependent(t *testing.T) {
	c := NewMemoryCounter()
	ctx := context.Background()

	c.Incr(ctx, "a", time.Minute)
	c.Incr(ctx, "a", time.Minute)
	count, _, _ := c.Incr(ctx, "b", time.Minute)
	if count != 1 {
		t.Errorf("key b: got %d", count)
	}
}

func TestMemoryCounter_SweepsExpired(t *testing.T) {
	now := time.Now()
	c := NewMemoryCounter()
	c.now = func() time.Time { return now }

	c.Incr(context.Background(), "old", time.Second)
	now = now.Add(2 * time.Second)
	c.Incr(context.Background(), "new", time.Second)

	if _, ok := c.windows["old"]; ok {
		t.Error("expired window should be swept")
	}
}

func TestRedisCounter(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	c := NewRedisCounter(client)
	key := "test:" + uuid.NewString()
	ctx := context.Background()

	count, resetIn, err := c.Incr(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || resetIn != time.Minute {
		t.Errorf("first hit: count %d resetIn %v", count, resetIn)
	}

	count, resetIn, err = c.Incr(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 || resetIn <= 0 || resetIn > time.Minute {
		t.Errorf("second hit: count %d resetIn %v", count, resetIn)
	}
	client.Del(ctx, "ratelimit:"+key)
}

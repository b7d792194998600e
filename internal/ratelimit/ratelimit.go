// Package ratelimit counts requests per key in fixed windows.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter increments the hit count for key in the current window and
// reports how long until the window resets.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

// RedisCounter keeps windows in Redis so limits hold across instances.
type RedisCounter struct {
	client redis.Cmdable
	prefix string
}

func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client, prefix: "ratelimit:"}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := c.prefix + key

	count, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("incr %s: %w", k, err)
	}

	// First hit opens the window.
	if count == 1 {
		if err := c.client.Expire(ctx, k, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("expire %s: %w", k, err)
		}
		return count, window, nil
	}

	ttl, err := c.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("pttl %s: %w", k, err)
	}
	// A key left without expiry (crash between INCR and EXPIRE) would block forever.
	if ttl < 0 {
		if err := c.client.Expire(ctx, k, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("expire %s: %w", k, err)
		}
		ttl = window
	}
	return count, ttl, nil
}

// MemoryCounter is a single-process fallback used when Redis is not configured.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	w, ok := c.windows[key]
	if !ok || !now.Before(w.resetAt) {
		c.sweep(now)
		w = &memoryWindow{resetAt: now.Add(window)}
		c.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt.Sub(now), nil
}

// sweep drops expired windows. Caller holds mu.
func (c *MemoryCounter) sweep(now time.Time) {
	for k, w := range c.windows {
		if !now.Before(w.resetAt) {
			delete(c.windows, k)
		}
	}
}

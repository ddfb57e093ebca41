package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Cooldown spaces calls sharing a key at least interval apart.
// A caller arriving early is suspended until the cooldown expires.
type Cooldown struct {
	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewCooldown creates a cooldown tracker. Interval <= 0 disables waiting.
func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Interval returns the configured minimum spacing
func (c *Cooldown) Interval() time.Duration {
	return c.interval
}

// Wait blocks until a call with key is allowed or ctx is done
func (c *Cooldown) Wait(ctx context.Context, key string) error {
	if c.interval <= 0 {
		return ctx.Err()
	}
	return c.limiter(key).Wait(ctx)
}

func (c *Cooldown) limiter(key string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[key]
	if !ok {
		// Burst of one: the first call passes, the next one waits a full interval
		l = rate.NewLimiter(rate.Every(c.interval), 1)
		c.limiters[key] = l
	}
	return l
}

// Call runs fn once the cooldown for key allows it
func Call[T any](ctx context.Context, c *Cooldown, key string, fn func(context.Context) (T, error)) (T, error) {
	if err := c.Wait(ctx, key); err != nil {
		var zero T
		return zero, err
	}
	return fn(ctx)
}

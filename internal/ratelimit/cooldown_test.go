package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldown_SpacesCallsWithSameKey(t *testing.T) {
	c := NewCooldown(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, c.Wait(ctx, "lookup"))
	assert.Less(t, time.Since(start), 25*time.Millisecond, "first call must not wait")

	require.NoError(t, c.Wait(ctx, "lookup"))
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
}

func TestCooldown_KeysAreIndependent(t *testing.T) {
	c := NewCooldown(time.Second)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, c.Wait(ctx, "by_username"))
	require.NoError(t, c.Wait(ctx, "by_fullname"))

	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestCooldown_ZeroIntervalNeverWaits(t *testing.T) {
	c := NewCooldown(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, c.Wait(ctx, "lookup"))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestCooldown_ContextCancelled(t *testing.T) {
	c := NewCooldown(time.Hour)
	require.NoError(t, c.Wait(context.Background(), "lookup"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Wait(ctx, "lookup")
	assert.Error(t, err)
}

func TestCall(t *testing.T) {
	c := NewCooldown(0)

	t.Run("returns operation result", func(t *testing.T) {
		got, err := Call(context.Background(), c, "op", func(ctx context.Context) (int, error) {
			return 7, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 7, got)
	})

	t.Run("returns operation error", func(t *testing.T) {
		opErr := errors.New("boom")
		_, err := Call(context.Background(), c, "op", func(ctx context.Context) (int, error) {
			return 0, opErr
		})
		assert.ErrorIs(t, err, opErr)
	})

	t.Run("skips operation when context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		_, err := Call(ctx, c, "op", func(ctx context.Context) (int, error) {
			called = true
			return 1, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

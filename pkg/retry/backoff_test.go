package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNextBackoffGrowsTowardMax(t *testing.T) {
	base := 5 * time.Second
	max := base * 64

	current := base
	for i := 0; i < 20; i++ {
		next := NextBackoff(current, max, 2, 0.2)
		assert.GreaterOrEqual(t, next, current)
		assert.LessOrEqual(t, next, max)
		current = next
	}
	// After enough doublings the backoff saturates near the cap.
	assert.GreaterOrEqual(t, current, time.Duration(float64(max)*0.8))
}

func TestNextBackoffJitterBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		next := NextBackoff(10*time.Second, time.Minute, 2, 0.2)
		assert.GreaterOrEqual(t, next, 10*time.Second)
		assert.LessOrEqual(t, next, 24*time.Second)
	}
}

func TestWithBackoffSucceedsAfterFailures(t *testing.T) {
	cfg := Config{MaxRetries: 5, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}

	calls := 0
	err := WithBackoff(context.Background(), cfg, zaptest.NewLogger(t), "test-op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithBackoffExhaustsRetries(t *testing.T) {
	cfg := Config{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}

	calls := 0
	err := WithBackoff(context.Background(), cfg, zaptest.NewLogger(t), "test-op", func() error {
		calls++
		return errors.New("down")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestWithBackoffHonorsCancellation(t *testing.T) {
	cfg := Config{MaxRetries: 100, InitialDelay: 10 * time.Millisecond, MaxDelay: 10 * time.Millisecond, Multiplier: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithBackoff(ctx, cfg, zaptest.NewLogger(t), "test-op", func() error {
		return errors.New("down")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

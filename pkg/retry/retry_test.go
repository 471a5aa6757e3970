package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Config{
		MaxAttempts: 3,
		Backoff:     Constant{Interval: time.Millisecond},
	}, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Do(context.Background(), Config{
		MaxAttempts: 2,
		Backoff:     Constant{Interval: time.Millisecond},
	}, func() error {
		calls++
		return boom
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 2, calls)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	fatal := errors.New("fatal")
	err := Do(context.Background(), Config{
		MaxAttempts: 5,
		Backoff:     Constant{Interval: time.Millisecond},
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
	}, func() error {
		calls++
		return fatal
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Config{
		MaxAttempts: 3,
		Backoff:     Constant{Interval: time.Minute},
	}, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}

func TestExponential_GrowsAndCaps(t *testing.T) {
	b := Exponential{Initial: 100 * time.Millisecond, Max: 400 * time.Millisecond, Multiplier: 2.0}

	assert.Equal(t, 100*time.Millisecond, b.Next(1))
	assert.Equal(t, 200*time.Millisecond, b.Next(2))
	assert.Equal(t, 400*time.Millisecond, b.Next(3))
	assert.Equal(t, 400*time.Millisecond, b.Next(10))
}

func TestExponential_JitterStaysBounded(t *testing.T) {
	b := Exponential{Initial: 100 * time.Millisecond, Max: time.Second, Multiplier: 2.0, Jitter: 0.2}

	for i := 0; i < 50; i++ {
		d := b.Next(1)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
	}
}

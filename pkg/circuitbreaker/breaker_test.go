package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(resetTimeout time.Duration) *Breaker {
	return New(Config{
		FailureThreshold: 3,
		ResetTimeout:     resetTimeout,
		HalfOpenMaxCalls: 2,
	})
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := newTestBreaker(time.Minute)

	b.Failure()
	b.Failure()
	assert.Equal(t, Closed, b.CurrentState())
	assert.True(t, b.Allow())

	b.Failure()
	assert.Equal(t, Open, b.CurrentState())
	assert.False(t, b.Allow())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := newTestBreaker(time.Minute)

	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()
	assert.Equal(t, Closed, b.CurrentState())
}

func TestBreaker_HalfOpenProbing(t *testing.T) {
	b := newTestBreaker(10 * time.Millisecond)

	b.Failure()
	b.Failure()
	b.Failure()
	require.Equal(t, Open, b.CurrentState())

	time.Sleep(20 * time.Millisecond)

	// Probe budget is HalfOpenMaxCalls; beyond that calls are shed.
	assert.True(t, b.Allow())
	require.Equal(t, HalfOpen, b.CurrentState())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow())

	b.Success()
	assert.Equal(t, Closed, b.CurrentState())
	assert.True(t, b.Allow())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := newTestBreaker(10 * time.Millisecond)

	b.Failure()
	b.Failure()
	b.Failure()
	time.Sleep(20 * time.Millisecond)
	require.True(t, b.Allow())
	require.Equal(t, HalfOpen, b.CurrentState())

	b.Failure()
	assert.Equal(t, Open, b.CurrentState())
	assert.False(t, b.Allow())
}

func TestBreaker_Metrics(t *testing.T) {
	b := newTestBreaker(time.Minute)
	b.Failure()

	m := b.Metrics()
	assert.Equal(t, "closed", m["state"])
	assert.Equal(t, 1, m["failures"])
	assert.Equal(t, 3, m["failure_threshold"])
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half-open", HalfOpen.String())
}

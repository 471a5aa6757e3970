package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_ConsumesCapacity(t *testing.T) {
	b := NewBucket(3, 0.0001)

	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow())
}

func TestBucket_Refills(t *testing.T) {
	b := NewBucket(1, 100)

	require.True(t, b.Allow())
	require.False(t, b.Allow())

	time.Sleep(30 * time.Millisecond)
	assert.True(t, b.Allow())
}

func TestBucket_CapsAtCapacity(t *testing.T) {
	b := NewBucket(2, 1000)

	time.Sleep(20 * time.Millisecond)

	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow())
}

func TestPerClient_IsolatesKeys(t *testing.T) {
	p := NewPerClient(1, 0.0001)

	assert.True(t, p.Allow("tab-a"))
	assert.False(t, p.Allow("tab-a"))
	assert.True(t, p.Allow("tab-b"))
}

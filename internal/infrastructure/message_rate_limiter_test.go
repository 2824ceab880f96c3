package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientRateLimiter_BurstThenDeny(t *testing.T) {
	rl := NewClientRateLimiter(60, 3)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("10.0.0.1")
		assert.True(t, ok, "request %d", i)
	}
	ok, wait := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, time.Second)

	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "other clients have their own bucket")
}

func TestClientRateLimiter_Refill(t *testing.T) {
	rl := NewClientRateLimiter(60, 1)
	defer rl.Close()
	now := time.Now()
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.False(t, ok)

	now = now.Add(1100 * time.Millisecond)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)
}

func TestClientRateLimiter_Evict(t *testing.T) {
	rl := NewClientRateLimiter(100, 100)
	defer rl.Close()
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("stale")
	now = now.Add(idleLimiterTTL + time.Second)
	rl.Allow("fresh")
	rl.Evict()

	assert.Equal(t, 1, rl.Len())
}

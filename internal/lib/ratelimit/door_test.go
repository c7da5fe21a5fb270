package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func TestDoorLimiter_EleventhRequestDenied(t *testing.T) {
	clock := newClock()
	l := NewDoorLimiter(WithClock(clock.Now))

	for i := 1; i <= 10; i++ {
		assert.True(t, l.Allow("main"), "request %d should be allowed", i)
		clock.Advance(time.Second)
	}
	assert.False(t, l.Allow("main"), "11th request must be denied")
	assert.False(t, l.Allow("main"))
}

func TestDoorLimiter_AllowsAfterReset(t *testing.T) {
	clock := newClock()
	l := NewDoorLimiter(WithClock(clock.Now))

	for i := 0; i < 11; i++ {
		l.Allow("main")
	}
	assert.False(t, l.Allow("main"))

	clock.Advance(60 * time.Second)
	assert.True(t, l.Allow("main"), "first request after reset must be allowed")
}

func TestDoorLimiter_DoorsAreIndependent(t *testing.T) {
	clock := newClock()
	l := NewDoorLimiter(WithClock(clock.Now), WithLimit(2))

	assert.True(t, l.Allow("front"))
	assert.True(t, l.Allow("front"))
	assert.False(t, l.Allow("front"))

	assert.True(t, l.Allow("back"))
}

func TestDoorLimiter_PrunesExpiredWindows(t *testing.T) {
	clock := newClock()
	l := NewDoorLimiter(WithClock(clock.Now), WithMaxEntries(100))

	for i := 0; i < 101; i++ {
		l.Allow(fmt.Sprintf("door-%d", i))
	}
	assert.Equal(t, 101, l.Len())

	clock.Advance(61 * time.Second)
	l.Allow("fresh")

	assert.Equal(t, 1, l.Len(), "expired windows must be swept before the new request")
}

func TestDoorLimiter_NoPruneBelowThreshold(t *testing.T) {
	clock := newClock()
	l := NewDoorLimiter(WithClock(clock.Now))

	for i := 0; i < 50; i++ {
		l.Allow(fmt.Sprintf("door-%d", i))
	}
	clock.Advance(2 * time.Minute)
	l.Allow("fresh")

	assert.Equal(t, 51, l.Len())
}

func TestDoorLimiter_ConcurrentCountsAreNotLost(t *testing.T) {
	l := NewDoorLimiter(WithLimit(50), WithWindow(time.Hour))

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("main") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), allowed.Load())
}

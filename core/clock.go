package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock supplies event timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock on every call.
var SystemClock Clock = systemClock{}

// DefaultCoarseResolution is the refresh interval used by NewCoarseClock
// when none is given.
const DefaultCoarseResolution = 500 * time.Microsecond

// CoarseClock caches time.Now and refreshes it from a background
// goroutine, trading timestamp precision for a cheaper Now on hot paths.
type CoarseClock struct {
	now      atomic.Pointer[time.Time]
	stop     chan struct{}
	stopOnce sync.Once
}

// NewCoarseClock starts a clock refreshed every resolution. Call Stop to
// release its goroutine.
func NewCoarseClock(resolution time.Duration) *CoarseClock {
	if resolution <= 0 {
		resolution = DefaultCoarseResolution
	}
	c := &CoarseClock{stop: make(chan struct{})}
	t := time.Now()
	c.now.Store(&t)
	go c.tick(resolution)
	return c
}

func (c *CoarseClock) tick(resolution time.Duration) {
	ticker := time.NewTicker(resolution)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			t := time.Now()
			c.now.Store(&t)
		}
	}
}

// Now returns the most recently cached time.
func (c *CoarseClock) Now() time.Time {
	return *c.now.Load()
}

// Stop ends the refresh goroutine. Now keeps returning the last cached
// value.
func (c *CoarseClock) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

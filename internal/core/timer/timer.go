package timer

import (
	"sync"
	"time"
)

// Timer reports elapsed real time since its previous query. Every call
// consumes the delta, so an instance must have exactly one consumer.
type Timer interface {
	Elapsed() time.Duration
}

// Clock is the wall-clock Timer. It reads the monotonic component of
// time.Now, so wall clock adjustments never produce negative deltas.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewClock() *Clock {
	return newClockWith(time.Now)
}

func newClockWith(now func() time.Time) *Clock {
	return &Clock{now: now, last: now()}
}

// Elapsed returns the time since the previous call, or since construction
// on the first call.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now()
	d := t.Sub(c.last)
	c.last = t
	if d < 0 {
		return 0
	}
	return d
}

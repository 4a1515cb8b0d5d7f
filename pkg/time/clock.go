package time

import (
	"sync"
	"time"
)

// clock supplies the wall-clock time written into ownership records
// markers are compared across processes and hosts, so a process-local monotonic
// reading is useless here and we rely on the host clock instead
type Clock interface {
	Now() time.Time
}

// system clock backed by time.Now
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// manual clock only moves when told to
// used to replay acquisition scenarios at fixed instants
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// moves the clock forward (or backward with a negative d)
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

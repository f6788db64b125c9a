package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually advanced time source. Services take an injected
// now func, so a Clock lets a test pin "today" for schedule generation and
// then move it to cross session-expiry or horizon boundaries.
type Clock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewClock returns a clock pinned to start, or to ReferenceTime when start
// is the zero value.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now reports the pinned instant.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// NowFunc adapts Now to the func() time.Time shape services are wired
// with. A nil clock falls through to the real time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set pins the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

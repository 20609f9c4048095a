// Package testutil provides deterministic fixtures for tests: a ticking
// clock so timestamps are stable across runs, and a seeded snapshot
// exercising every record family.
package testutil

import (
	"sync"
	"time"
)

// TickingClock is a thread-safe deterministic clock. Each call to Now
// advances one second from a fixed base, so repeated runs of the same test
// produce identical timestamps.
type TickingClock struct {
	mu   sync.Mutex
	base time.Time
	tick int
}

// NewTickingClock creates a clock starting at the given base time. The
// first Now() call returns base plus one second.
func NewTickingClock(base time.Time) *TickingClock {
	return &TickingClock{base: base}
}

// Now advances and returns the clock.
func (c *TickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick++
	return c.base.Add(time.Duration(c.tick) * time.Second)
}

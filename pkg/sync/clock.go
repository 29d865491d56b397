// ABOUTME: Monotonic engine clock with suspend accounting
// ABOUTME: Advances only while running so positions survive suspend/resume
package sync

import (
	"sync"
	"time"
)

// Clock measures time spent running since creation
type Clock struct {
	mu           sync.RWMutex
	source       func() time.Time
	elapsed      time.Duration // Accumulated running time before runningSince
	runningSince time.Time
	running      bool
}

// NewClock creates a stopped clock backed by the wall clock
func NewClock() *Clock {
	return NewClockWithSource(time.Now)
}

// NewClockWithSource creates a stopped clock reading time from source
func NewClockWithSource(source func() time.Time) *Clock {
	return &Clock{source: source}
}

// Start resumes the clock. Starting a running clock does nothing.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.runningSince = c.source()
	c.running = true
}

// Stop freezes the clock at its current reading
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.elapsed += c.sinceLocked()
	c.running = false
}

// Now returns the clock reading
func (c *Clock) Now() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.running {
		return c.elapsed
	}
	return c.elapsed + c.sinceLocked()
}

// Running reports whether the clock is advancing
func (c *Clock) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

func (c *Clock) sinceLocked() time.Duration {
	d := c.source().Sub(c.runningSince)
	if d < 0 {
		// Never run backwards, even if the source does
		return 0
	}
	return d
}

package engine

import (
	"sync"
	"time"
)

// Clock supplies the current time to timers
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when advanced. It is safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a manual clock reading start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current reading
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Timer measures elapsed running time between Start and Stop.
// Elapsed is zero before the first Start.
type Timer struct {
	clock   Clock
	started time.Time
	running bool
	elapsed time.Duration
}

// NewTimer creates a stopped timer reading clock; nil means the system clock
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Timer{clock: clock}
}

// Start begins or resumes measuring
func (t *Timer) Start() {
	if t.running {
		return
	}
	t.started = t.clock.Now()
	t.running = true
}

// Stop pauses measuring, keeping the accumulated elapsed time
func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.elapsed += t.clock.Now().Sub(t.started)
	t.running = false
}

// Reset zeroes the timer. A running timer keeps running from now.
func (t *Timer) Reset() {
	t.elapsed = 0
	if t.running {
		t.started = t.clock.Now()
	}
}

// Running reports whether the timer is measuring
func (t *Timer) Running() bool { return t.running }

// Elapsed returns the accumulated running time
func (t *Timer) Elapsed() time.Duration {
	if t.running {
		return t.elapsed + t.clock.Now().Sub(t.started)
	}
	return t.elapsed
}

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerElapsed(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	timer := NewTimer(clock)

	assert.Equal(t, time.Duration(0), timer.Elapsed(), "unstarted timer reads zero")
	assert.False(t, timer.Running())

	timer.Start()
	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, timer.Elapsed())

	timer.Stop()
	clock.Advance(time.Hour)
	assert.Equal(t, 1500*time.Millisecond, timer.Elapsed(), "stopped timer does not advance")

	timer.Start()
	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 2*time.Second, timer.Elapsed(), "resumed timer accumulates")
}

func TestTimerStartIsIdempotent(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	timer := NewTimer(clock)

	timer.Start()
	clock.Advance(time.Second)
	timer.Start()
	clock.Advance(time.Second)
	assert.Equal(t, 2*time.Second, timer.Elapsed())
}

func TestTimerReset(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	timer := NewTimer(clock)

	timer.Start()
	clock.Advance(3 * time.Second)
	timer.Reset()
	assert.Equal(t, time.Duration(0), timer.Elapsed())
	assert.True(t, timer.Running())

	clock.Advance(time.Second)
	assert.Equal(t, time.Second, timer.Elapsed())

	timer.Stop()
	timer.Reset()
	assert.Equal(t, time.Duration(0), timer.Elapsed())
}

func TestNewTimerDefaultsToSystemClock(t *testing.T) {
	timer := NewTimer(nil)
	timer.Start()
	assert.GreaterOrEqual(t, timer.Elapsed(), time.Duration(0))
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 0, Seconds(-time.Second))
	assert.Equal(t, 0, Seconds(999*time.Millisecond))
	assert.Equal(t, 59, Seconds(59900*time.Millisecond))
	assert.Equal(t, 60, Seconds(time.Minute))
}

package executor

import "time"

// Clock provides the wall time the executor schedules against, in
// milliseconds. A monotonic source is required.
type Clock interface {
	Now() uint64
}

// SystemClock reports milliseconds elapsed since its creation.
type SystemClock struct {
	epoch time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

func (c *SystemClock) Now() uint64 {
	return uint64(time.Since(c.epoch).Milliseconds())
}

// SimulatedClock is a manually advanced clock for tests and offline
// playback.
type SimulatedClock struct {
	now uint64
}

func NewSimulatedClock() *SimulatedClock {
	return &SimulatedClock{}
}

func (c *SimulatedClock) Now() uint64 {
	return c.now
}

// Set moves the clock to an absolute time. Moving backwards is not
// supported.
func (c *SimulatedClock) Set(ms uint64) {
	if ms > c.now {
		c.now = ms
	}
}

// Advance moves the clock forward by the given number of milliseconds.
func (c *SimulatedClock) Advance(ms uint64) {
	c.now += ms
}

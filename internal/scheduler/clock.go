package scheduler

import "sync/atomic"

// Clock is a monotonic logical counter for poll cycles.
//
// Cycle numbers give log lines and stats a stable ordering key that does
// not depend on wall-clock races between concurrent pollers.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next cycle number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current cycle number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

package engine

import "sync/atomic"

// SeqClock stamps journal entries with a logical sequence number.
// Implemented by Clock and by testutil.DeterministicClock.
type SeqClock interface {
	Next() int64
}

// Clock is a monotonic logical clock.
//
// Cycles and operations are ordered by the seq values it hands out, never
// by wall-clock time, so a replayed session reproduces the same order.
// Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next value is start+1.
// Used to continue a journal after its last recorded seq.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

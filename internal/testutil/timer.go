package testutil

import (
	"sync"
	"time"
)

// ManualTimer is an engine.Timer whose waits only end when the test says so.
//
// Every After call registers a waiter. Advance moves the fake clock and
// releases all waiters; WaitForWaiters blocks until the scheduler loop has
// parked on the timer, which makes tick-by-tick assertions race free.
type ManualTimer struct {
	mu      sync.Mutex
	now     time.Time
	waiters []chan time.Time
	parked  chan struct{}
}

// NewManualTimer creates a timer whose fake clock starts at the Unix epoch.
func NewManualTimer() *ManualTimer {
	return &ManualTimer{
		now:    time.Unix(0, 0).UTC(),
		parked: make(chan struct{}, 1),
	}
}

// After implements engine.Timer. The duration is ignored; the returned
// channel fires on the next Advance.
func (m *ManualTimer) After(time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan time.Time, 1)
	m.waiters = append(m.waiters, ch)
	select {
	case m.parked <- struct{}{}:
	default:
	}
	return ch
}

// Waiting returns the number of registered waiters.
func (m *ManualTimer) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}

// Advance moves the fake clock forward by d and fires every waiter.
// Returns the number of waiters released.
func (m *ManualTimer) Advance(d time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = m.now.Add(d)
	n := len(m.waiters)
	for _, ch := range m.waiters {
		ch <- m.now
	}
	m.waiters = nil
	return n
}

// Now returns the fake clock's current time.
func (m *ManualTimer) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// WaitForWaiters blocks until at least one waiter is registered or the
// timeout elapses. Returns false on timeout.
func (m *ManualTimer) WaitForWaiters(timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if m.Waiting() > 0 {
			return true
		}
		select {
		case <-m.parked:
		case <-deadline:
			return m.Waiting() > 0
		}
	}
}

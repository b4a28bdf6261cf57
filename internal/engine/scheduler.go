package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is the pause between two scheduler ticks.
const DefaultTickInterval = 100 * time.Millisecond

// Job is one unit of scheduled work. A returned error is logged; it does
// not stop the scheduler.
type Job func() error

// Timer abstracts the inter-tick wait so tests can drive ticks by hand.
type Timer interface {
	After(d time.Duration) <-chan time.Time
}

// RealTimer waits on the wall clock.
type RealTimer struct{}

// After implements Timer using time.After.
func (RealTimer) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Scheduler drains a FIFO of jobs, one job per tick.
//
// The tick loop (Run) executes at most one job, then waits one interval
// before the next. Pause stops the loop from starting new jobs; a job
// already running always finishes. Step and Drain run jobs synchronously
// on the caller's goroutine and ignore the running flag, which is how
// tests single-step the presentation.
//
// Thread-safety model:
//   - Schedule, Pause, Resume, Running, Pending: safe from any goroutine
//   - Run: at most one goroutine at a time
type Scheduler struct {
	interval time.Duration
	timer    Timer
	jobs     *fifo[Job]

	mu      sync.Mutex
	running bool
	resume  chan struct{}
	failed  int
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithTimer replaces the wall-clock timer.
func WithTimer(t Timer) SchedulerOption {
	return func(s *Scheduler) {
		s.timer = t
	}
}

// NewScheduler creates a running scheduler with the given tick interval.
// A non-positive interval falls back to DefaultTickInterval.
func NewScheduler(interval time.Duration, opts ...SchedulerOption) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	s := &Scheduler{
		interval: interval,
		timer:    RealTimer{},
		jobs:     newFIFO[Job](),
		running:  true,
		resume:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Schedule appends a job to the back of the queue.
func (s *Scheduler) Schedule(job Job) {
	s.jobs.push(job)
}

// Pending returns the number of jobs not yet started.
func (s *Scheduler) Pending() int {
	return s.jobs.len()
}

// Running reports whether the tick loop may start jobs.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Pause stops the tick loop from starting further jobs.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		slog.Debug("scheduler paused", "pending", s.jobs.len())
	}
	s.running = false
}

// Resume lets the tick loop start jobs again.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		slog.Debug("scheduler resumed", "pending", s.jobs.len())
	}
	s.running = true

	// Coalesced wake-up for a loop parked in Run.
	select {
	case s.resume <- struct{}{}:
	default:
	}
}

// Toggle flips between paused and running and returns the new state.
func (s *Scheduler) Toggle() bool {
	if s.Running() {
		s.Pause()
		return false
	}
	s.Resume()
	return true
}

// Failed returns how many jobs have returned an error so far.
func (s *Scheduler) Failed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Step pops and runs one job on the caller's goroutine.
// Returns false if there was nothing to run.
func (s *Scheduler) Step() bool {
	job, ok := s.jobs.pop()
	if !ok {
		return false
	}
	if err := job(); err != nil {
		s.mu.Lock()
		s.failed++
		s.mu.Unlock()

		// Log and continue.
		slog.Error("scheduled job failed",
			"error", err,
			"pending", s.jobs.len(),
			"event", "job_failed",
		)
	}
	return true
}

// Drain steps until the queue is empty and returns the number of jobs run.
// Jobs scheduled by running jobs are drained too.
func (s *Scheduler) Drain() int {
	n := 0
	for s.Step() {
		n++
	}
	return n
}

// Run is the tick loop. While running it executes one job per tick and
// waits one interval on the Timer; while paused it waits for Resume.
// Returns ctx.Err() when the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Debug("scheduler starting", "interval", s.interval)

	for {
		if !s.Running() {
			select {
			case <-ctx.Done():
				slog.Debug("scheduler stopping: context cancelled")
				return ctx.Err()
			case <-s.resume:
				// Re-check the flag; a stale wake-up may predate a Pause.
				continue
			}
		}

		s.Step()

		select {
		case <-ctx.Done():
			slog.Debug("scheduler stopping: context cancelled")
			return ctx.Err()
		case <-s.timer.After(s.interval):
		}
	}
}

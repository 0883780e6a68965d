package storage

import (
	"sync"
	"time"
)

// Timer is the cancellable handle a Scheduler hands back
type Timer interface {
	Stop() bool
}

// Scheduler abstracts timer creation so tests can drive debounce deadlines
// with a fake clock instead of sleeping.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// WallClock returns the real-time scheduler used outside of tests
func WallClock() Scheduler {
	return wallScheduler{}
}

// Debouncer coalesces a burst of edits into one deferred commit. Each call
// to Schedule cancels any pending commit and arms a new one; only the last
// commit in a burst runs. Flush runs the pending commit immediately, for
// conversation switches and shutdown.
type Debouncer struct {
	mu      sync.Mutex
	sched   Scheduler
	delay   time.Duration
	timer   Timer
	pending func()
}

// NewDebouncer builds a debouncer with the given quiet delay
func NewDebouncer(sched Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{sched: sched, delay: delay}
}

// Schedule defers fn by the quiet delay, replacing any commit already pending
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fn
	d.timer = d.sched.AfterFunc(d.delay, func() {
		d.mu.Lock()
		pending := d.pending
		d.pending = nil
		d.timer = nil
		d.mu.Unlock()

		if pending != nil {
			pending()
		}
	})
}

// Flush runs the pending commit now, if any
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	if pending != nil {
		pending()
	}
}

// Stop cancels any pending commit without running it
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}

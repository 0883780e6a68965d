package storage

import (
	"testing"
	"time"
)

// fakeScheduler records armed timers and fires them on demand
type fakeScheduler struct {
	timers []*fakeTimer
}

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

func (f *fakeScheduler) AfterFunc(_ time.Duration, fn func()) Timer {
	timer := &fakeTimer{fn: fn}
	f.timers = append(f.timers, timer)
	return timer
}

// fire runs every armed timer that has not been stopped
func (f *fakeScheduler) fire() {
	for _, timer := range f.timers {
		if !timer.stopped {
			timer.stopped = true
			timer.fn()
		}
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	sched := &fakeScheduler{}
	d := NewDebouncer(sched, 400*time.Millisecond)

	runs := 0
	for i := 0; i < 5; i++ {
		d.Schedule(func() { runs++ })
	}

	sched.fire()

	if runs != 1 {
		t.Errorf("burst of 5 schedules ran %d times, want 1", runs)
	}
}

func TestDebouncerKeepsLatestCommit(t *testing.T) {
	sched := &fakeScheduler{}
	d := NewDebouncer(sched, 400*time.Millisecond)

	var got string
	d.Schedule(func() { got = "first" })
	d.Schedule(func() { got = "second" })

	sched.fire()

	if got != "second" {
		t.Errorf("ran %q, want the latest commit", got)
	}
}

func TestDebouncerFlush(t *testing.T) {
	sched := &fakeScheduler{}
	d := NewDebouncer(sched, 400*time.Millisecond)

	t.Run("RunsPendingImmediately", func(t *testing.T) {
		ran := false
		d.Schedule(func() { ran = true })
		d.Flush()
		if !ran {
			t.Error("Flush() did not run the pending commit")
		}
	})

	t.Run("TimerDoesNotRerunAfterFlush", func(t *testing.T) {
		runs := 0
		d.Schedule(func() { runs++ })
		d.Flush()
		sched.fire()
		if runs != 1 {
			t.Errorf("commit ran %d times, want 1", runs)
		}
	})

	t.Run("FlushWithNothingPendingIsNoOp", func(t *testing.T) {
		d.Flush()
	})
}

func TestDebouncerStop(t *testing.T) {
	sched := &fakeScheduler{}
	d := NewDebouncer(sched, 400*time.Millisecond)

	ran := false
	d.Schedule(func() { ran = true })
	d.Stop()
	sched.fire()

	if ran {
		t.Error("Stop() did not cancel the pending commit")
	}

	d.Flush()
	if ran {
		t.Error("Flush() after Stop() resurrected the commit")
	}
}

func TestDebouncerTimerFires(t *testing.T) {
	sched := &fakeScheduler{}
	d := NewDebouncer(sched, 400*time.Millisecond)

	ran := false
	d.Schedule(func() { ran = true })
	sched.fire()

	if !ran {
		t.Error("armed timer did not run the commit")
	}

	// A fired commit must not run again on Flush
	ran = false
	d.Flush()
	if ran {
		t.Error("Flush() re-ran an already fired commit")
	}
}

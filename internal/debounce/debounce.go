// ABOUTME: Debounced execution: run a task once activity has settled.
// ABOUTME: Timer owns at most one pending run; Latest debounces a value.

package debounce

import (
	"sync"
	"time"
)

// Timer runs fn after delay has passed without another Trigger. Runs of fn
// never overlap.
type Timer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	gen     uint64
	stopped bool

	running sync.Mutex
}

func New(delay time.Duration, fn func()) *Timer {
	return &Timer{delay: delay, fn: fn}
}

// Trigger schedules fn, replacing any pending run.
func (t *Timer) Trigger() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.gen++
	gen := t.gen
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.delay, func() { t.fire(gen) })
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.stopped || t.timer == nil {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()
	t.execute()
}

func (t *Timer) execute() {
	t.running.Lock()
	defer t.running.Unlock()
	t.fn()
}

// Cancel discards the pending run, if any.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

func (t *Timer) cancelLocked() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Pending reports whether a run is scheduled.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Flush cancels the pending run and runs fn immediately.
func (t *Timer) Flush() {
	t.Cancel()
	t.execute()
}

// Stop cancels the pending run and ignores later Triggers.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.stopped = true
}

// Latest delivers the most recent value passed to Set once input settles.
type Latest[T any] struct {
	mu    sync.Mutex
	value T
	timer *Timer
}

func NewLatest[T any](delay time.Duration, fn func(T)) *Latest[T] {
	l := &Latest[T]{}
	l.timer = New(delay, func() {
		l.mu.Lock()
		v := l.value
		l.mu.Unlock()
		fn(v)
	})
	return l
}

func (l *Latest[T]) Set(v T) {
	l.mu.Lock()
	l.value = v
	l.mu.Unlock()
	l.timer.Trigger()
}

// Flush delivers the current value now.
func (l *Latest[T]) Flush() { l.timer.Flush() }

func (l *Latest[T]) Cancel() { l.timer.Cancel() }

func (l *Latest[T]) Pending() bool { return l.timer.Pending() }

func (l *Latest[T]) Stop() { l.timer.Stop() }

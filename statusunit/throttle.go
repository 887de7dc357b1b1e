package main

import (
	"sync"
	"time"
)

// throttle limits how often the display is refreshed. Fyne widgets are
// updated on the main thread through fyne.Do, so updates arriving faster
// than the interval are coalesced: the latest one runs once the interval has
// passed, and the panel never stays behind the last snapshot.
type throttle struct {
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	last    time.Time
	pending func()
	timer   *time.Timer
}

func newThrottle(interval time.Duration, now func() time.Time) *throttle {
	return &throttle{interval: interval, now: now}
}

// Do runs fn now unless an update ran within the interval. Otherwise fn
// replaces any waiting update and runs when the interval ends.
func (t *throttle) Do(fn func()) {
	t.mu.Lock()
	now := t.now()
	if t.timer == nil && (t.last.IsZero() || now.Sub(t.last) >= t.interval) {
		t.last = now
		t.mu.Unlock()
		fn()
		return
	}

	t.pending = fn
	if t.timer == nil {
		t.timer = time.AfterFunc(t.interval-now.Sub(t.last), t.flush)
	}
	t.mu.Unlock()
}

func (t *throttle) flush() {
	t.mu.Lock()
	fn := t.pending
	t.pending = nil
	t.timer = nil
	t.last = t.now()
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop drops a waiting update.
func (t *throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = nil
}

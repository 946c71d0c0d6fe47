package geocode

import (
	"sync"
	"time"
)

// Debouncer collapses rapid successive calls into a single trailing call:
// only the most recent function submitted within the delay window runs, and
// every earlier one in the burst is suppressed outright rather than queued.
// Explicit state (mutex + timer + generation) keeps supersession race-free
// under concurrent callers.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Call schedules fn after the delay, cancelling any previously scheduled
// call that has not fired yet.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stale := gen != d.gen
		d.mu.Unlock()
		// Stop can lose the race with an already-fired timer; the
		// generation check keeps a superseded fn from running.
		if stale {
			return
		}
		fn()
	})
}

// Stop cancels any pending call. Safe to call multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

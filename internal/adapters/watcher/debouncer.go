package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is how long the source must stay quiet before a
// change triggers a backup cycle.
const DefaultDebounceWindow = 2 * time.Second

// Debouncer coalesces bursts of triggers into a single callback invocation.
type Debouncer struct {
	mu       sync.Mutex
	pending  int
	timer    *time.Timer
	window   time.Duration
	callback func(count int)
}

// NewDebouncer creates a debouncer. The callback receives the number of
// triggers that were coalesced.
func NewDebouncer(window time.Duration, callback func(count int)) *Debouncer {
	return &Debouncer{
		window:   window,
		callback: callback,
	}
}

// Trigger records a change and restarts the quiet window.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending++

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	count := d.pending
	d.pending = 0
	d.timer = nil
	d.mu.Unlock()

	if count > 0 && d.callback != nil {
		d.callback(count)
	}
}

// Flush runs the callback immediately for any pending triggers and blocks
// until it returns.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// The timer already fired; its callback handles the pending triggers.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	count := d.pending
	d.pending = 0
	d.mu.Unlock()

	if count > 0 && d.callback != nil {
		d.callback(count)
	}
}

// Stop discards pending triggers without running the callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = 0
}

package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers per path: every Trigger resets the
// path's timer, and fn runs once the path has stayed quiet for the full
// delay. Timers for different paths are independent.
type Debouncer struct {
	delay  time.Duration
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Trigger schedules fn for path after the quiet period, canceling any
// previously scheduled run for the same path.
func (d *Debouncer) Trigger(path string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, exists := d.timers[path]; exists {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current, exists := d.timers[path]
		if !exists || current != timer {
			// superseded by a newer trigger or stopped while firing
			d.mu.Unlock()
			return
		}
		delete(d.timers, path)
		d.mu.Unlock()

		fn()
	})
	d.timers[path] = timer
}

// Stop cancels all pending timers. Callbacks that have not fired are
// abandoned; a callback already running is not waited for.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for path, timer := range d.timers {
		timer.Stop()
		delete(d.timers, path)
	}
}

// Len reports how many paths have a pending timer.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

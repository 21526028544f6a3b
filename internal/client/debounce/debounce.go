// Package debounce coalesces bursts of calls into a single trailing call.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiet period used for search input.
const DefaultWindow = 300 * time.Millisecond

// Debouncer delivers only the last submitted value, once no new value has
// arrived for the configured window.
type Debouncer[T any] struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func(T)
	timer   *time.Timer
	pending T
	armed   bool
	stopped bool
}

// New returns a Debouncer calling fn. A non-positive window means DefaultWindow.
func New[T any](window time.Duration, fn func(T)) *Debouncer[T] {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer[T]{window: window, fn: fn}
}

// Submit records v and restarts the window.
func (d *Debouncer[T]) Submit(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = v
	d.armed = true
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer[T]) fire() {
	v, ok := d.take()
	if ok {
		d.fn(v)
	}
}

// take clears the pending value so each submission is delivered at most once.
func (d *Debouncer[T]) take() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if !d.armed {
		return zero, false
	}
	v := d.pending
	d.pending = zero
	d.armed = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return v, true
}

// Flush runs the pending call, if any, on the calling goroutine and reports
// whether there was one.
func (d *Debouncer[T]) Flush() bool {
	v, ok := d.take()
	if ok {
		d.fn(v)
	}
	return ok
}

// Pending reports whether a call is waiting for its window to elapse.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Stop drops the pending call. Later submissions are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.armed = false
	var zero T
	d.pending = zero
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

package ratelimit

import (
	"sync"
	"time"
)

// Debounce delays fn until wait has elapsed without another Invoke, then
// calls it once with the latest argument.
type Debounce[T any] struct {
	fn   func(T)
	wait time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	arg     T

	callMu sync.Mutex
}

// NewDebounce wraps fn so that bursts of calls collapse into one.
func NewDebounce[T any](wait time.Duration, fn func(T)) *Debounce[T] {
	return &Debounce[T]{fn: fn, wait: wait}
}

// Invoke records arg and restarts the quiet period.
func (d *Debounce[T]) Invoke(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = true
	d.arg = arg
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Cancel drops the pending call.
func (d *Debounce[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stop()
}

// Flush runs the pending call immediately.
func (d *Debounce[T]) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	arg := d.arg
	d.stop()
	d.callMu.Lock()
	d.mu.Unlock()
	defer d.callMu.Unlock()
	d.fn(arg)
}

// Pending reports whether a call is waiting for the quiet period to end.
func (d *Debounce[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debounce[T]) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = false
	var zero T
	d.arg = zero
}

func (d *Debounce[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	arg := d.arg
	d.stop()
	d.callMu.Lock()
	d.mu.Unlock()
	defer d.callMu.Unlock()
	d.fn(arg)
}

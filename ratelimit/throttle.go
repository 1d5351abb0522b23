package ratelimit

import (
	"sync"
	"time"
)

// Option configures a Throttle.
type Option func(*options)

type options struct {
	leading  bool
	trailing bool
}

// WithLeading controls whether the first call of a window fires immediately.
func WithLeading(on bool) Option {
	return func(o *options) { o.leading = on }
}

// WithTrailing controls whether the last call made during a window fires
// when the window closes.
func WithTrailing(on bool) Option {
	return func(o *options) { o.trailing = on }
}

// Throttle invokes fn at most once per wait window. By default both the
// leading and trailing edges fire: the first call runs immediately and the
// latest call made while the window is open runs when it closes.
type Throttle[T any] struct {
	fn   func(T)
	wait time.Duration
	opts options

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	arg     T

	callMu sync.Mutex
}

// NewThrottle wraps fn so that it runs at most once every wait.
func NewThrottle[T any](wait time.Duration, fn func(T), opts ...Option) *Throttle[T] {
	o := options{leading: true, trailing: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Throttle[T]{fn: fn, wait: wait, opts: o}
}

// Invoke requests a call with arg.
func (t *Throttle[T]) Invoke(arg T) {
	t.mu.Lock()
	if t.timer == nil {
		t.startWindow()
		if t.opts.leading {
			t.callMu.Lock()
			t.mu.Unlock()
			t.run(arg)
			return
		}
	}
	if t.opts.trailing {
		t.pending = true
		t.arg = arg
	}
	t.mu.Unlock()
}

// Cancel drops any pending trailing call and closes the current window.
func (t *Throttle[T]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop()
}

// Flush runs the pending trailing call now, if there is one.
func (t *Throttle[T]) Flush() {
	t.mu.Lock()
	if !t.pending {
		t.mu.Unlock()
		return
	}
	arg := t.arg
	t.stop()
	t.callMu.Lock()
	t.mu.Unlock()
	t.run(arg)
}

// Pending reports whether a trailing call is scheduled.
func (t *Throttle[T]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// startWindow must be called with mu held.
func (t *Throttle[T]) startWindow() {
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.wait, func() { t.expire(gen) })
}

// stop must be called with mu held.
func (t *Throttle[T]) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
	t.pending = false
	var zero T
	t.arg = zero
}

func (t *Throttle[T]) expire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	if !t.pending {
		t.timer = nil
		t.mu.Unlock()
		return
	}
	arg := t.arg
	t.pending = false
	var zero T
	t.arg = zero
	t.startWindow()
	t.callMu.Lock()
	t.mu.Unlock()
	t.run(arg)
}

// run must be called with callMu held; it releases it.
func (t *Throttle[T]) run(arg T) {
	defer t.callMu.Unlock()
	t.fn(arg)
}

// Package ratelimit provides cancellable throttle and debounce primitives
// used to bound how often continuous pointer input commits state.
//
// Both types own at most one pending timer. Invocations of the wrapped
// function are serialized and issued in call order; intermediate arguments
// may be dropped but are never reordered. Cancel is idempotent and is a no-op
// once the pending call has fired.
//
// The wrapped function must not call back into the same Throttle or Debounce.
package ratelimit

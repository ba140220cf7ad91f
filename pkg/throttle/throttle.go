// Package throttle bounds the rate at which a callback is invoked from a
// high-frequency event source.
//
// Throttle forwards on the leading edge and drops everything inside the
// window. Average accumulates samples and emits their mean once per window.
// Instances share no state.
package throttle

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type options struct {
	clock clock.Clock
}

// Option configures a throttle.
type Option func(*options)

// WithClock sets the clock used to measure intervals.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Throttle returns a wrapper that forwards to fn at most once per interval.
// The first call always goes through; later calls go through only when at
// least interval has elapsed since the last forwarded call. Calls inside the
// window are dropped.
func Throttle[T any](fn func(T), interval time.Duration, opts ...Option) func(T) {
	o := buildOptions(opts)

	var (
		mu    sync.Mutex
		last  time.Time
		fired bool
	)

	return func(v T) {
		mu.Lock()
		now := o.clock.Now()
		if fired && now.Sub(last) < interval {
			mu.Unlock()
			return
		}
		fired = true
		last = now
		mu.Unlock()

		fn(v)
	}
}

package throttle

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Average emits the arithmetic mean of the samples added during each window.
//
// When a window closes without samples the previous mean is emitted again.
// Nothing is emitted before the first sample arrives.
type Average struct {
	fn     func(float64)
	ticker *clock.Ticker

	mu      sync.Mutex
	sum     float64
	count   int
	prev    float64
	hasPrev bool

	stopOnce sync.Once
	done     chan struct{}
}

// NewAverage starts an averaging throttle that calls fn once per interval.
// Call Stop to release the ticker.
func NewAverage(fn func(float64), interval time.Duration, opts ...Option) *Average {
	o := buildOptions(opts)

	a := &Average{
		fn:     fn,
		ticker: o.clock.Ticker(interval),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

// Add records a sample for the current window.
func (a *Average) Add(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sum += v
	a.count++
}

// Stop ends the window ticker. Safe to call multiple times.
func (a *Average) Stop() {
	a.stopOnce.Do(func() {
		a.ticker.Stop()
		close(a.done)
	})
}

func (a *Average) run() {
	for {
		select {
		case <-a.done:
			return
		case <-a.ticker.C:
			if v, ok := a.flush(); ok {
				a.fn(v)
			}
		}
	}
}

// flush closes the current window and returns the value to emit.
func (a *Average) flush() (float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count > 0 {
		a.prev = a.sum / float64(a.count)
		a.hasPrev = true
		a.sum, a.count = 0, 0
	}
	return a.prev, a.hasPrev
}

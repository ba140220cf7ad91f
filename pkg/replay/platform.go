package replay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/geotools/geotools-go/pkg/orientation"
)

// ErrPermissionFailed is returned by a GatedPlatform in PermissionFail mode.
var ErrPermissionFailed = errors.New("permission API failed")

// Platform is a scripted ungated platform. Events are delivered by calling
// Dispatch.
type Platform struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []listenerEntry
}

type listenerEntry struct {
	id uint64
	fn func(orientation.Event)
}

// NewPlatform creates a platform with no listeners.
func NewPlatform() *Platform {
	return &Platform{}
}

// AddOrientationListener registers fn. The returned function removes it
// and is safe to call multiple times.
func (p *Platform) AddOrientationListener(fn func(orientation.Event)) func() {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.listeners = append(p.listeners, listenerEntry{id: id, fn: fn})
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { p.removeListener(id) })
	}
}

func (p *Platform) removeListener(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, l := range p.listeners {
		if l.id == id {
			p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
			return
		}
	}
}

// Dispatch delivers e to every registered listener in registration order
// and returns how many were called.
func (p *Platform) Dispatch(e orientation.Event) int {
	p.mu.Lock()
	ls := make([]listenerEntry, len(p.listeners))
	copy(ls, p.listeners)
	p.mu.Unlock()

	for _, l := range ls {
		l.fn(e)
	}
	return len(ls)
}

// Listeners returns the number of registered listeners.
func (p *Platform) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

// PermissionMode is how a GatedPlatform answers permission requests.
type PermissionMode uint8

const (
	// PermissionGrant answers granted.
	PermissionGrant PermissionMode = iota
	// PermissionDeny answers denied.
	PermissionDeny
	// PermissionUndecided answers default.
	PermissionUndecided
	// PermissionFail returns ErrPermissionFailed.
	PermissionFail
	// PermissionHang never answers; the request ends with its context.
	PermissionHang
	// PermissionAsk waits for Answer.
	PermissionAsk
)

var permissionModeNames = map[PermissionMode]string{
	PermissionGrant:     "granted",
	PermissionDeny:      "denied",
	PermissionUndecided: "default",
	PermissionFail:      "error",
	PermissionHang:      "hang",
	PermissionAsk:       "ask",
}

// String returns the mode name as used in scenarios.
func (m PermissionMode) String() string {
	if s, ok := permissionModeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParsePermissionMode parses a mode name. The empty string selects
// PermissionGrant.
func ParsePermissionMode(s string) (PermissionMode, error) {
	if s == "" {
		return PermissionGrant, nil
	}
	for m, name := range permissionModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown permission mode %q", s)
}

// Option configures a GatedPlatform or TracePlatform.
type Option func(*options)

type options struct {
	clock clock.Clock
	delay time.Duration
}

// WithClock sets the clock used for answer delays and trace spacing.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithDelay sets how long a GatedPlatform takes to answer.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		o.delay = d
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type answer struct {
	result orientation.PermissionResult
	err    error
}

// GatedPlatform is a scripted platform with a permission API.
type GatedPlatform struct {
	*Platform

	clock clock.Clock

	mu       sync.Mutex
	mode     PermissionMode
	delay    time.Duration
	requests int
	waiting  []chan answer
}

// NewGatedPlatform creates a gated platform answering requests per mode.
func NewGatedPlatform(mode PermissionMode, opts ...Option) *GatedPlatform {
	o := buildOptions(opts)
	return &GatedPlatform{
		Platform: NewPlatform(),
		clock:    o.clock,
		mode:     mode,
		delay:    o.delay,
	}
}

// SetMode changes how later requests are answered.
func (g *GatedPlatform) SetMode(mode PermissionMode, delay time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = mode
	g.delay = delay
}

// Mode returns the current answer mode.
func (g *GatedPlatform) Mode() PermissionMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Requests returns how many requests have started. A request counts once
// its answer delay is armed.
func (g *GatedPlatform) Requests() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests
}

// Waiting returns how many requests in PermissionAsk mode await Answer.
func (g *GatedPlatform) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiting)
}

// Answer resolves every request waiting in PermissionAsk mode and returns
// how many there were.
func (g *GatedPlatform) Answer(result orientation.PermissionResult, err error) int {
	g.mu.Lock()
	waiting := g.waiting
	g.waiting = nil
	g.mu.Unlock()

	for _, ch := range waiting {
		ch <- answer{result: result, err: err}
	}
	return len(waiting)
}

// RequestPermission answers according to the configured mode.
func (g *GatedPlatform) RequestPermission(ctx context.Context) (orientation.PermissionResult, error) {
	g.mu.Lock()
	mode, delay := g.mode, g.delay
	var timer *clock.Timer
	if delay > 0 && mode != PermissionHang && mode != PermissionAsk {
		timer = g.clock.Timer(delay)
	}
	var ask chan answer
	if mode == PermissionAsk {
		ask = make(chan answer, 1)
		g.waiting = append(g.waiting, ask)
	}
	g.requests++
	g.mu.Unlock()

	if timer != nil {
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return orientation.PermissionResultDefault, ctx.Err()
		}
	}

	switch mode {
	case PermissionGrant:
		return orientation.PermissionResultGranted, nil
	case PermissionDeny:
		return orientation.PermissionResultDenied, nil
	case PermissionUndecided:
		return orientation.PermissionResultDefault, nil
	case PermissionFail:
		return orientation.PermissionResultDefault, ErrPermissionFailed
	case PermissionAsk:
		select {
		case a := <-ask:
			return a.result, a.err
		case <-ctx.Done():
			g.dropWaiter(ask)
			return orientation.PermissionResultDefault, ctx.Err()
		}
	default:
		<-ctx.Done()
		return orientation.PermissionResultDefault, ctx.Err()
	}
}

func (g *GatedPlatform) dropWaiter(ch chan answer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, w := range g.waiting {
		if w == ch {
			g.waiting = append(g.waiting[:i:i], g.waiting[i+1:]...)
			return
		}
	}
}

var (
	_ orientation.Platform      = (*Platform)(nil)
	_ orientation.GatedPlatform = (*GatedPlatform)(nil)
)

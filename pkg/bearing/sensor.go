package bearing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/geotools/geotools-go/pkg/log"
	"github.com/geotools/geotools-go/pkg/orientation"
	"github.com/geotools/geotools-go/pkg/stream"
	"github.com/geotools/geotools-go/pkg/throttle"
)

var (
	// ErrNoPermissionAPI is traced when RequestPermission is called on a
	// platform without a permission API.
	ErrNoPermissionAPI = errors.New("platform has no permission API")

	// ErrClosed is returned by Flush once the sensor is closed.
	ErrClosed = errors.New("sensor closed")
)

// Sensor is the bearing acquisition state machine.
type Sensor struct {
	id     string
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger
	trace  log.Logger

	source    orientation.Source
	requester orientation.PermissionRequester
	remove    func()

	states *stream.Value[State]
	inbox  *mailbox

	// ctx is cancelled by Close and bounds in-flight permission requests.
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	closing   chan struct{}
	done      chan struct{}

	// Fields below are owned by the event loop.
	state    State
	primed   bool
	cycle    uint64
	sampled  bool
	deadline *clock.Timer
	offer    func(float64)
	average  *throttle.Average
	rotation *orientation.Rotation
}

// New builds a sensor on platform and starts listening for events.
// Zero durations in cfg select the defaults.
func New(platform orientation.Platform, cfg Config, opts ...Option) (*Sensor, error) {
	if platform == nil {
		return nil, ErrNilPlatform
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Sensor{
		cfg:     cfg.withDefaults(),
		clock:   clock.New(),
		logger:  slog.New(slog.DiscardHandler),
		trace:   log.NoopLogger{},
		source:  orientation.SelectSource(platform),
		inbox:   newMailbox(),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
		state:   State{Status: StatusInitializing, Permission: PermissionDefault},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.New().String()
	}
	if r, ok := platform.(orientation.PermissionRequester); ok {
		s.requester = r
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.states = stream.NewValue(s.state)
	s.initSmoothing()

	s.logger.Debug("sensor started",
		slog.String("sensor_id", s.id),
		slog.String("platform", s.source.Kind().String()),
		slog.Duration("timeout", s.cfg.Timeout),
		slog.Duration("throttle", s.cfg.ThrottleInterval),
		slog.String("smoothing", s.cfg.Smoothing.String()),
	)
	s.traceState(State{}, s.state, "initial")

	// Events delivered during registration wait in the mailbox until the
	// loop starts.
	s.remove = platform.AddOrientationListener(func(e orientation.Event) {
		s.inbox.post(func() { s.handleEvent(e) })
	})
	go s.run()
	return s, nil
}

// ID returns the sensor ID.
func (s *Sensor) ID() string { return s.id }

// Config returns the effective configuration.
func (s *Sensor) Config() Config { return s.cfg }

// Kind returns the platform family selected at construction.
func (s *Sensor) Kind() orientation.Kind { return s.source.Kind() }

// State returns the most recently published state.
func (s *Sensor) State() State {
	return s.states.Current().Clone()
}

// Subscribe registers fn for state updates. fn receives the current state
// before Subscribe returns. Each delivery is a private copy.
func (s *Sensor) Subscribe(fn func(State)) *stream.Subscription {
	return s.states.Subscribe(func(st State) { fn(st.Clone()) })
}

// RequestPermission starts a permission cycle. It returns immediately;
// the outcome is published as a state change. ctx bounds the platform
// request, and cancelling it resolves the cycle as unsupported.
func (s *Sensor) RequestPermission(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.inbox.post(func() { s.beginPermission(ctx) })
}

// Close removes the platform listener, stops the deadline and smoothing,
// and ends publishing. Safe to call multiple times, including from an
// observer.
func (s *Sensor) Close() error {
	s.closeOnce.Do(func() {
		if s.remove != nil {
			s.remove()
		}
		s.states.Close()
		s.inbox.close()
		s.cancel()
		close(s.closing)
		s.logger.Debug("sensor closed", slog.String("sensor_id", s.id))
	})
	return nil
}

// Done is closed once the event loop has stopped.
func (s *Sensor) Done() <-chan struct{} {
	return s.done
}

// Flush blocks until all work queued before the call has been processed,
// including a deadline that has already fired. It must not be called from
// an observer.
func (s *Sensor) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	if !s.inbox.post(func() { close(flushed) }) {
		return ErrClosed
	}
	select {
	case <-flushed:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sensor) run() {
	defer close(s.done)
	defer s.shutdown()

	for {
		select {
		case <-s.closing:
			return
		case <-s.deadlineC():
			s.expire()
		case <-s.inbox.ready:
			for _, fn := range s.inbox.take() {
				select {
				case <-s.closing:
					return
				default:
				}
				// A fired deadline goes first, so Flush observes it.
				s.pollDeadline()
				fn()
			}
		}
	}
}

// deadlineC returns the armed deadline's channel, or nil.
func (s *Sensor) deadlineC() <-chan time.Time {
	if s.deadline == nil {
		return nil
	}
	return s.deadline.C
}

func (s *Sensor) pollDeadline() {
	select {
	case <-s.deadlineC():
		s.expire()
	default:
	}
}

func (s *Sensor) shutdown() {
	s.stopDeadline()
	if s.average != nil {
		s.average.Stop()
	}
}

func (s *Sensor) initSmoothing() {
	if s.cfg.Smoothing == SmoothingAverage {
		s.startAverage()
		s.offer = func(h float64) {
			if s.rotation == nil {
				s.rotation = orientation.NewRotation(h)
			}
			s.average.Add(s.rotation.Unwrap(h))
		}
		return
	}
	s.offer = throttle.Throttle(s.applyBearing, s.cfg.ThrottleInterval, throttle.WithClock(s.clock))
}

func (s *Sensor) startAverage() {
	var a *throttle.Average
	a = throttle.NewAverage(func(v float64) {
		s.inbox.post(func() {
			// Means computed by a replaced averager are stale.
			if s.average == a {
				s.applyBearing(orientation.Normalize(v))
			}
		})
	}, s.cfg.ThrottleInterval, throttle.WithClock(s.clock))
	s.average = a
	s.rotation = nil
}

// resetSmoothing drops buffered samples so that nothing from an earlier
// grant can produce a bearing in a later one.
func (s *Sensor) resetSmoothing() {
	if s.average != nil {
		s.average.Stop()
		s.startAverage()
	}
}

func (s *Sensor) handleEvent(e orientation.Event) {
	if !s.primed {
		s.primed = true
		s.setup(e)
		if s.source.Kind() == orientation.KindUngated {
			// The first event only primes ungated platforms.
			s.traceOrientation(e, log.DispositionSetup, nil)
			return
		}
	}

	if s.state.Status != StatusReady || s.state.Permission != PermissionGranted {
		s.traceOrientation(e, log.DispositionIgnored, nil)
		return
	}
	h, ok := s.source.Heading(e)
	if !ok {
		s.traceOrientation(e, log.DispositionIgnored, nil)
		return
	}

	s.traceOrientation(e, log.DispositionSample, &h)
	s.sampled = true
	s.offer(h)
}

// setup interprets the first platform event. On an ungated platform the
// event decides support even when a permission request has already failed.
func (s *Sensor) setup(e orientation.Event) {
	if s.state.Status != StatusInitializing && s.source.Kind() != orientation.KindUngated {
		return
	}

	res := s.source.Setup(e)
	next := s.state
	next.Status = StatusReady
	if !res.Supported {
		next.Status = StatusUnsupported
	}
	if res.ImplicitGrant {
		next.Permission = PermissionGranted
	}
	s.transition(next, "first event")
}

func (s *Sensor) applyBearing(deg float64) {
	if s.state.Status != StatusReady || s.state.Permission != PermissionGranted {
		return
	}
	if b, ok := s.state.BearingValue(); ok && b == deg {
		return
	}
	s.transition(s.state.withBearing(deg), "sample")
}

func (s *Sensor) beginPermission(ctx context.Context) {
	if s.deadline != nil {
		s.tracePermission(s.cycle, log.PermissionSuperseded)
		s.stopDeadline()
	}
	s.cycle++
	cycle := s.cycle
	s.sampled = false
	s.resetSmoothing()

	next := s.state
	next.Status = StatusPending
	next.Bearing = nil
	s.transition(next, "permission requested")
	s.tracePermission(cycle, log.PermissionRequested)

	if s.requester == nil {
		s.finishPermission(cycle, orientation.PermissionResultDefault, ErrNoPermissionAPI)
		return
	}

	go func() {
		res, err := s.askPlatform(ctx)
		s.inbox.post(func() { s.finishPermission(cycle, res, err) })
	}()
}

// askPlatform calls the platform permission API, converting panics into
// errors.
func (s *Sensor) askPlatform(ctx context.Context) (res orientation.PermissionResult, err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("permission request panicked: %v", r)
		}
	}()

	res, err = s.requester.RequestPermission(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return res, err
}

func (s *Sensor) finishPermission(cycle uint64, res orientation.PermissionResult, err error) {
	if cycle != s.cycle {
		s.tracePermission(cycle, log.PermissionStale)
		return
	}

	next := s.state
	next.Bearing = nil

	if err != nil {
		next.Status = StatusUnsupported
		s.tracePermission(cycle, log.PermissionFailed)
		s.traceError(err, "request permission")
		s.logger.Warn("permission request failed",
			slog.String("sensor_id", s.id),
			slog.Uint64("cycle", cycle),
			slog.Any("error", err),
		)
		s.transition(next, "permission request failed")
		return
	}

	next.Status = StatusReady
	switch res {
	case orientation.PermissionResultGranted:
		next.Permission = PermissionGranted
		s.tracePermission(cycle, log.PermissionGranted)
		s.armDeadline()
		s.transition(next, "permission granted")
	case orientation.PermissionResultDenied:
		next.Permission = PermissionDenied
		s.tracePermission(cycle, log.PermissionDenied)
		s.transition(next, "permission denied")
	default:
		next.Permission = PermissionDefault
		s.tracePermission(cycle, log.PermissionUndecided)
		s.transition(next, "permission undecided")
	}
}

func (s *Sensor) armDeadline() {
	s.deadline = s.clock.Timer(s.cfg.Timeout)
}

func (s *Sensor) stopDeadline() {
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
}

// expire runs when the current cycle's deadline fires. Earlier cycles'
// timers are stopped and dropped when a new cycle begins.
func (s *Sensor) expire() {
	cycle := s.cycle
	s.deadline = nil

	if s.sampled || s.state.HasBearing() {
		s.tracePermission(cycle, log.PermissionConfirmed)
		return
	}
	if s.state.Status != StatusReady || s.state.Permission != PermissionGranted {
		return
	}

	s.tracePermission(cycle, log.PermissionExpired)
	next := s.state
	next.Status = StatusUnsupported
	s.transition(next, "no sample before deadline")
}

// transition publishes next as the new state.
func (s *Sensor) transition(next State, reason string) {
	if next.Permission != PermissionGranted {
		next.Bearing = nil
	}
	prev := s.state
	s.state = next.Clone()

	s.traceState(prev, next, reason)
	s.logger.Debug("state changed",
		slog.String("sensor_id", s.id),
		slog.String("from", prev.String()),
		slog.String("to", next.String()),
		slog.String("reason", reason),
	)
	s.states.Publish(next)
}

func (s *Sensor) event(cat log.Category) log.Event {
	return log.Event{
		Timestamp: s.clock.Now(),
		SensorID:  s.id,
		Category:  cat,
		Platform:  s.source.Kind().String(),
	}
}

func (s *Sensor) traceOrientation(e orientation.Event, d log.Disposition, heading *float64) {
	ev := s.event(log.CategoryOrientation)
	ev.Orientation = &log.OrientationEvent{
		Alpha:          e.Alpha,
		Absolute:       e.Absolute,
		CompassHeading: e.CompassHeading,
		Disposition:    d,
		Heading:        heading,
	}
	s.trace.Log(ev)
}

func (s *Sensor) traceState(prev, next State, reason string) {
	ev := s.event(log.CategoryState)
	sc := &log.StateChangeEvent{
		NewStatus:     next.Status.String(),
		NewPermission: next.Permission.String(),
		Reason:        reason,
	}
	if reason != "initial" {
		sc.OldStatus = prev.Status.String()
		sc.OldPermission = prev.Permission.String()
	}
	if b, ok := next.BearingValue(); ok {
		sc.Bearing = &b
	}
	ev.StateChange = sc
	s.trace.Log(ev)
}

func (s *Sensor) tracePermission(cycle uint64, step log.PermissionStep) {
	ev := s.event(log.CategoryPermission)
	ev.Permission = &log.PermissionEvent{Cycle: cycle, Step: step}
	s.trace.Log(ev)
}

func (s *Sensor) traceError(err error, op string) {
	ev := s.event(log.CategoryError)
	ev.Error = &log.ErrorEventData{Message: err.Error(), Context: op}
	s.trace.Log(ev)
}

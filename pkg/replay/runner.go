package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/geotools/geotools-go/pkg/bearing"
	"github.com/geotools/geotools-go/pkg/log"
	"github.com/geotools/geotools-go/pkg/orientation"
)

// ErrSettleTimeout is returned when the sensor does not catch up with the
// mock clock within the settle timeout.
var ErrSettleTimeout = errors.New("sensor did not settle")

// Published is a state published during a run.
type Published struct {
	// At is the offset from the start of the run.
	At    time.Duration
	State bearing.State
}

// Failure is a failed expectation.
type Failure struct {
	// Step is the 1-based step number.
	Step    int
	At      time.Duration
	Message string
}

func (f Failure) String() string {
	return fmt.Sprintf("step %d at %v: %s", f.Step, f.At, f.Message)
}

// Result is the outcome of a scenario run.
type Result struct {
	Scenario string
	SensorID string
	States   []Published
	Failures []Failure
	Duration time.Duration
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Count returns how many published states had status st.
func (r *Result) Count(st bearing.Status) int {
	n := 0
	for _, p := range r.States {
		if p.State.Status == st {
			n++
		}
	}
	return n
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the operational logger, also handed to the sensor.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithTraceLogger sets a trace logger receiving the sensor's events.
func WithTraceLogger(l log.Logger) RunnerOption {
	return func(r *Runner) {
		r.trace = l
	}
}

// WithResolution sets the mock clock step. Smaller steps place timer
// expiries more precisely.
func WithResolution(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.resolution = d
	}
}

// WithSettleTimeout bounds the real time spent waiting for the sensor after
// each clock step.
func WithSettleTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.settleTimeout = d
	}
}

// WithSensorID sets the ID of the sensors the runner builds.
func WithSensorID(id string) RunnerOption {
	return func(r *Runner) {
		r.sensorID = id
	}
}

// Runner plays scenarios against a fresh sensor on a mock clock.
type Runner struct {
	logger        *slog.Logger
	trace         log.Logger
	resolution    time.Duration
	settleTimeout time.Duration
	sensorID      string
}

// NewRunner creates a runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:        slog.New(slog.DiscardHandler),
		resolution:    time.Millisecond,
		settleTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.resolution <= 0 {
		r.resolution = time.Millisecond
	}
	return r
}

// outcomes counts resolved permission requests in the trace.
type outcomes struct {
	mu sync.Mutex
	n  int
}

func (o *outcomes) Log(e log.Event) {
	if e.Permission == nil || !e.Permission.Step.Outcome() {
		return
	}
	o.mu.Lock()
	o.n++
	o.mu.Unlock()
}

func (o *outcomes) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.n
}

type stateLog struct {
	mu    sync.Mutex
	clock clock.Clock
	start time.Time
	seen  []Published
}

func (l *stateLog) observe(s bearing.State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, Published{At: l.clock.Now().Sub(l.start), State: s})
}

func (l *stateLog) snapshot() []Published {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Published, len(l.seen))
	copy(out, l.seen)
	return out
}

// run holds the state of one scenario run.
type run struct {
	r        *Runner
	sc       *Scenario
	clock    *clock.Mock
	base     *Platform
	gated    *GatedPlatform
	sensor   *bearing.Sensor
	outcomes *outcomes

	elapsed  time.Duration
	requests int
	dues     []time.Duration
}

// Run plays sc and returns the published states and failed expectations.
// An error means the run itself could not complete.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	cfg, err := sc.Sensor.BearingConfig()
	if err != nil {
		return nil, err
	}
	mode, err := ParsePermissionMode(sc.Permission)
	if err != nil {
		return nil, err
	}

	rn := &run{
		r:        r,
		sc:       sc,
		clock:    clock.NewMock(),
		outcomes: &outcomes{},
	}
	// The mock starts at the Unix epoch; trace timestamps read better from
	// the wall clock.
	rn.clock.Set(time.Now().Truncate(time.Second))

	var platform orientation.Platform
	if sc.Kind() == orientation.KindGated {
		rn.gated = NewGatedPlatform(mode, WithClock(rn.clock), WithDelay(sc.PermissionDelay))
		rn.base = rn.gated.Platform
		platform = rn.gated
	} else {
		rn.base = NewPlatform()
		platform = rn.base
	}

	opts := []bearing.Option{
		bearing.WithClock(rn.clock),
		bearing.WithLogger(r.logger),
		bearing.WithTraceLogger(log.NewMultiLogger(rn.outcomes, r.trace)),
	}
	if r.sensorID != "" {
		opts = append(opts, bearing.WithID(r.sensorID))
	}
	sensor, err := bearing.New(platform, cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer sensor.Close()
	rn.sensor = sensor

	states := &stateLog{clock: rn.clock, start: rn.clock.Now()}
	sensor.Subscribe(states.observe)

	r.logger.Info("running scenario",
		slog.String("scenario", sc.Name),
		slog.String("platform", sc.Platform),
		slog.String("sensor_id", sensor.ID()),
	)

	res := &Result{Scenario: sc.Name, SensorID: sensor.ID()}
	for i, st := range sc.Steps {
		if err := rn.advanceTo(ctx, st.At); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		switch {
		case st.Event != nil:
			rn.base.Dispatch(st.Event.Event(rn.clock.Now()))
		case st.Request:
			rn.request(ctx)
		}

		if err := rn.settle(ctx); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		if st.Expect != nil {
			for _, msg := range st.Expect.Check(sensor.State()) {
				f := Failure{Step: i + 1, At: rn.elapsed, Message: msg}
				res.Failures = append(res.Failures, f)
				r.logger.Warn("expectation failed", slog.String("scenario", sc.Name), slog.String("failure", f.String()))
			}
		}
	}

	res.States = states.snapshot()
	res.Duration = rn.elapsed
	return res, nil
}

func (rn *run) request(ctx context.Context) {
	rn.sensor.RequestPermission(ctx)
	rn.requests++

	switch {
	case rn.gated == nil:
		// Ungated requests fail without calling the platform.
		rn.dues = append(rn.dues, rn.elapsed)
	case rn.gated.Mode() != PermissionHang:
		rn.dues = append(rn.dues, rn.elapsed+rn.sc.PermissionDelay)
	}
}

// advanceTo moves the mock clock to offset in resolution steps, settling
// the sensor after each.
func (rn *run) advanceTo(ctx context.Context, offset time.Duration) error {
	for rn.elapsed < offset {
		d := min(rn.r.resolution, offset-rn.elapsed)
		rn.clock.Add(d)
		rn.elapsed += d
		if err := rn.settle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// settle waits until the sensor has processed everything due at the
// current mock time.
func (rn *run) settle(ctx context.Context) error {
	deadline := time.Now().Add(rn.r.settleTimeout)

	if rn.gated != nil {
		if err := waitUntil(ctx, deadline, func() bool { return rn.gated.Requests() >= rn.requests }); err != nil {
			return fmt.Errorf("%w: waiting for permission request", err)
		}
	}
	if err := rn.flush(ctx, deadline); err != nil {
		return err
	}

	due := 0
	for _, d := range rn.dues {
		if d <= rn.elapsed {
			due++
		}
	}
	if err := waitUntil(ctx, deadline, func() bool { return rn.outcomes.count() >= due }); err != nil {
		return fmt.Errorf("%w: waiting for permission outcome", err)
	}
	return rn.flush(ctx, deadline)
}

func (rn *run) flush(ctx context.Context, deadline time.Time) error {
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	if err := rn.sensor.Flush(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrSettleTimeout
		}
		return err
	}
	return nil
}

func waitUntil(ctx context.Context, deadline time.Time, cond func() bool) error {
	for !cond() {
		if time.Now().After(deadline) {
			return ErrSettleTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Microsecond):
		}
	}
	return nil
}

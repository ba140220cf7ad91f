package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/geotools/geotools-go/pkg/log"
	"github.com/geotools/geotools-go/pkg/orientation"
)

// ErrEmptyTrace is returned when a trace holds no orientation events for
// the selected sensor.
var ErrEmptyTrace = errors.New("trace has no orientation events")

// TimedEvent is a raw event with its offset from the first event.
type TimedEvent struct {
	Offset time.Duration
	Event  orientation.Event
}

// Trace is the raw orientation input of one recorded sensor.
type Trace struct {
	SensorID string
	Kind     orientation.Kind
	Events   []TimedEvent
}

// Duration returns the offset of the last event.
func (t *Trace) Duration() time.Duration {
	if len(t.Events) == 0 {
		return 0
	}
	return t.Events[len(t.Events)-1].Offset
}

// LoadTrace reads the orientation events of sensorID from a trace file.
// An empty sensorID selects the first sensor in the file.
func LoadTrace(path, sensorID string) (*Trace, error) {
	cat := log.CategoryOrientation
	r, err := log.NewFilteredReader(path, log.Filter{SensorID: sensorID, Category: &cat})
	if err != nil {
		return nil, err
	}
	defer r.Close()

	tr := &Trace{SensorID: sensorID}
	var start time.Time
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trace %s: %w", path, err)
		}
		if ev.Orientation == nil {
			continue
		}
		if tr.SensorID == "" {
			tr.SensorID = ev.SensorID
		}
		if ev.SensorID != tr.SensorID {
			continue
		}
		if len(tr.Events) == 0 {
			start = ev.Timestamp
			tr.Kind = kindOf(ev.Platform)
		}

		o := ev.Orientation
		tr.Events = append(tr.Events, TimedEvent{
			Offset: ev.Timestamp.Sub(start),
			Event: orientation.Event{
				Alpha:          o.Alpha,
				Absolute:       o.Absolute,
				CompassHeading: o.CompassHeading,
				Timestamp:      ev.Timestamp,
			},
		})
	}

	if len(tr.Events) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTrace)
	}
	return tr, nil
}

func kindOf(platform string) orientation.Kind {
	if platform == orientation.KindGated.String() {
		return orientation.KindGated
	}
	return orientation.KindUngated
}

// TracePlatform replays a recorded trace. Gated traces are replayed on a
// platform that grants permission immediately.
type TracePlatform struct {
	trace *Trace
	clock clock.Clock
	base  *Platform
	gated *GatedPlatform
}

// NewTracePlatform creates a platform for tr. WithClock sets the clock
// used to space events.
func NewTracePlatform(tr *Trace, opts ...Option) *TracePlatform {
	o := buildOptions(opts)
	p := &TracePlatform{trace: tr, clock: o.clock}
	if tr.Kind == orientation.KindGated {
		p.gated = NewGatedPlatform(PermissionGrant, opts...)
		p.base = p.gated.Platform
	} else {
		p.base = NewPlatform()
	}
	return p
}

// Platform returns the platform to build a sensor on.
func (p *TracePlatform) Platform() orientation.Platform {
	if p.gated != nil {
		return p.gated
	}
	return p.base
}

// Play dispatches the trace's events with their original spacing and
// returns how many were delivered. It stops early when ctx is done.
func (p *TracePlatform) Play(ctx context.Context) (int, error) {
	start := p.clock.Now()
	for i, te := range p.trace.Events {
		if wait := te.Offset - p.clock.Since(start); wait > 0 {
			timer := p.clock.Timer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return i, ctx.Err()
			}
		}

		ev := te.Event
		ev.Timestamp = p.clock.Now()
		p.base.Dispatch(ev)
	}
	return len(p.trace.Events), nil
}

package bearing

import (
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/geotools/geotools-go/pkg/log"
)

// Option configures a Sensor.
type Option func(*Sensor)

// WithClock sets the clock driving the deadline and throttling.
func WithClock(c clock.Clock) Option {
	return func(s *Sensor) {
		s.clock = c
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sensor) {
		s.logger = l
	}
}

// WithTraceLogger sets the trace logger receiving raw events, state
// changes and permission steps.
func WithTraceLogger(l log.Logger) Option {
	return func(s *Sensor) {
		s.trace = l
	}
}

// WithID overrides the random sensor ID used in traces and feeds.
func WithID(id string) Option {
	return func(s *Sensor) {
		s.id = id
	}
}

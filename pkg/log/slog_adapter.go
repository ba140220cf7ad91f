package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("sensor_id", event.SensorID),
		slog.String("category", event.Category.String()),
	}
	if event.Platform != "" {
		attrs = append(attrs, slog.String("platform", event.Platform))
	}

	switch {
	case event.Orientation != nil:
		o := event.Orientation
		attrs = append(attrs,
			slog.String("disposition", o.Disposition.String()),
			slog.Bool("absolute", o.Absolute),
		)
		if o.Alpha != nil {
			attrs = append(attrs, slog.Float64("alpha", *o.Alpha))
		}
		if o.CompassHeading != nil {
			attrs = append(attrs, slog.Float64("compass_heading", *o.CompassHeading))
		}
		if o.Heading != nil {
			attrs = append(attrs, slog.Float64("heading", *o.Heading))
		}
	case event.StateChange != nil:
		sc := event.StateChange
		attrs = append(attrs,
			slog.String("old_status", sc.OldStatus),
			slog.String("new_status", sc.NewStatus),
			slog.String("permission", sc.NewPermission),
		)
		if sc.Bearing != nil {
			attrs = append(attrs, slog.Float64("bearing", *sc.Bearing))
		}
		if sc.Reason != "" {
			attrs = append(attrs, slog.String("reason", sc.Reason))
		}
	case event.Permission != nil:
		attrs = append(attrs,
			slog.Uint64("cycle", event.Permission.Cycle),
			slog.String("step", event.Permission.Step.String()),
		)
	case event.Error != nil:
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)

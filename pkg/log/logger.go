package log

// Logger receives trace events.
type Logger interface {
	// Log records a trace event. Implementations must be safe for
	// concurrent use and must not block for long: sensors call Log from
	// their event loop.
	Log(event Event)
}

// NoopLogger discards all events. It is usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}

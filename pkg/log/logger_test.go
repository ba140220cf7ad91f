package log

import (
	"testing"
	"time"
)

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var l NoopLogger
	l.Log(Event{Timestamp: time.Now(), Category: CategoryError, Error: &ErrorEventData{Message: "ignored"}})

	var _ Logger = l
}

// recordingLogger records events for testing
type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}

func TestMultiLoggerCallsAll(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}

	multi := NewMultiLogger(a, nil, b)
	multi.Log(Event{SensorID: "s-1", Category: CategoryState})

	for i, r := range []*recordingLogger{a, b} {
		if len(r.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(r.events))
			continue
		}
		if r.events[0].SensorID != "s-1" {
			t.Errorf("logger %d: SensorID = %q", i, r.events[0].SensorID)
		}
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	multi := NewMultiLogger()
	multi.Log(Event{})
}

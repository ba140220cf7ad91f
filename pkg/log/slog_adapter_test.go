package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func decodeSlogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	bearing := 90.0
	adapter.Log(Event{
		Timestamp: time.Now(),
		SensorID:  "sensor-1",
		Category:  CategoryState,
		Platform:  "ungated",
		StateChange: &StateChangeEvent{
			OldStatus:     "INITIALIZING",
			NewStatus:     "READY",
			NewPermission: "GRANTED",
			Bearing:       &bearing,
		},
	})

	entry := decodeSlogLine(t, &buf)
	if entry["sensor_id"] != "sensor-1" {
		t.Errorf("sensor_id: got %v", entry["sensor_id"])
	}
	if entry["new_status"] != "READY" {
		t.Errorf("new_status: got %v", entry["new_status"])
	}
	if entry["bearing"] != 90.0 {
		t.Errorf("bearing: got %v", entry["bearing"])
	}
	if entry["platform"] != "ungated" {
		t.Errorf("platform: got %v", entry["platform"])
	}
}

func TestSlogAdapterLogsOrientation(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ch := 10.0
	adapter.Log(Event{
		SensorID: "sensor-2",
		Category: CategoryOrientation,
		Orientation: &OrientationEvent{
			CompassHeading: &ch,
			Disposition:    DispositionIgnored,
		},
	})

	entry := decodeSlogLine(t, &buf)
	if entry["disposition"] != "IGNORED" {
		t.Errorf("disposition: got %v", entry["disposition"])
	}
	if entry["compass_heading"] != 10.0 {
		t.Errorf("compass_heading: got %v", entry["compass_heading"])
	}
	if _, ok := entry["alpha"]; ok {
		t.Error("alpha should be omitted when absent")
	}
}

func TestSlogAdapterBelowLevelIsSilent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	adapter.Log(Event{SensorID: "s", Category: CategoryError, Error: &ErrorEventData{Message: "x"}})

	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}

package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/geotools/geotools-go/pkg/log"
)

// createTestLogFile writes events to a fresh trace file and returns its
// path.
func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.ctrace")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func fptr(v float64) *float64 { return &v }

var base = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// session is a short gated permission cycle for sensor "sensor-aaaa-1".
func session() []log.Event {
	const id = "sensor-aaaa-1"
	at := func(ms int) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }
	return []log.Event{
		{Timestamp: at(0), SensorID: id, Category: log.CategoryState, Platform: "gated",
			StateChange: &log.StateChangeEvent{NewStatus: "INITIALIZING", NewPermission: "DEFAULT"}},
		{Timestamp: at(10), SensorID: id, Category: log.CategoryOrientation, Platform: "gated",
			Orientation: &log.OrientationEvent{CompassHeading: fptr(90), Disposition: log.DispositionIgnored}},
		{Timestamp: at(10), SensorID: id, Category: log.CategoryState, Platform: "gated",
			StateChange: &log.StateChangeEvent{OldStatus: "INITIALIZING", OldPermission: "DEFAULT", NewStatus: "READY", NewPermission: "DEFAULT", Reason: "platform detected"}},
		{Timestamp: at(20), SensorID: id, Category: log.CategoryPermission, Platform: "gated",
			Permission: &log.PermissionEvent{Cycle: 1, Step: log.PermissionRequested}},
		{Timestamp: at(30), SensorID: id, Category: log.CategoryPermission, Platform: "gated",
			Permission: &log.PermissionEvent{Cycle: 1, Step: log.PermissionGranted}},
		{Timestamp: at(40), SensorID: id, Category: log.CategoryOrientation, Platform: "gated",
			Orientation: &log.OrientationEvent{CompassHeading: fptr(90), Disposition: log.DispositionSample, Heading: fptr(270)}},
		{Timestamp: at(40), SensorID: id, Category: log.CategoryState, Platform: "gated",
			StateChange: &log.StateChangeEvent{OldStatus: "READY", OldPermission: "GRANTED", NewStatus: "READY", NewPermission: "GRANTED", Bearing: fptr(270)}},
		{Timestamp: at(200), SensorID: id, Category: log.CategoryError, Platform: "gated",
			Error: &log.ErrorEventData{Message: "boom", Context: "request permission"}},
	}
}

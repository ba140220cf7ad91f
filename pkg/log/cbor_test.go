package log

import (
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

func TestEventCBORRoundTrip(t *testing.T) {
	alpha := 42.5
	heading := 317.5
	event := Event{
		Timestamp: time.Date(2024, 5, 1, 10, 30, 0, 123456789, time.UTC),
		SensorID:  "sensor-1",
		Category:  CategoryOrientation,
		Platform:  "gated",
		Orientation: &OrientationEvent{
			Alpha:       &alpha,
			Absolute:    true,
			Disposition: DispositionSample,
			Heading:     &heading,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, event.Timestamp)
	}
	if decoded.SensorID != "sensor-1" || decoded.Platform != "gated" {
		t.Errorf("identity: got %q/%q", decoded.SensorID, decoded.Platform)
	}
	if decoded.Orientation == nil {
		t.Fatal("Orientation is nil")
	}
	if decoded.Orientation.CompassHeading != nil {
		t.Error("CompassHeading should stay nil")
	}
	if *decoded.Orientation.Alpha != alpha || *decoded.Orientation.Heading != heading {
		t.Errorf("values: got alpha=%v heading=%v", *decoded.Orientation.Alpha, *decoded.Orientation.Heading)
	}
	if decoded.StateChange != nil || decoded.Permission != nil || decoded.Error != nil {
		t.Error("unexpected payloads set after decode")
	}
}

func TestStateChangeEventCBORRoundTrip(t *testing.T) {
	bearing := 270.0
	event := Event{
		Timestamp: time.Now(),
		SensorID:  "sensor-2",
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			OldStatus:     "PENDING",
			NewStatus:     "READY",
			OldPermission: "DEFAULT",
			NewPermission: "GRANTED",
			Bearing:       &bearing,
			Reason:        "sample",
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	sc := decoded.StateChange
	if sc == nil {
		t.Fatal("StateChange is nil")
	}
	if sc.NewStatus != "READY" || sc.NewPermission != "GRANTED" || sc.Reason != "sample" {
		t.Errorf("StateChange = %+v", sc)
	}
	if sc.Bearing == nil || *sc.Bearing != 270 {
		t.Errorf("Bearing = %v, want 270", sc.Bearing)
	}
}

func TestPermissionAndErrorEventsRoundTrip(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SensorID: "s", Category: CategoryPermission, Permission: &PermissionEvent{Cycle: 3, Step: PermissionExpired}},
		{Timestamp: time.Now(), SensorID: "s", Category: CategoryError, Error: &ErrorEventData{Message: "boom", Context: "request permission"}},
	}

	for _, e := range events {
		data, err := EncodeEvent(e)
		if err != nil {
			t.Fatalf("EncodeEvent failed: %v", err)
		}
		decoded, err := DecodeEvent(data)
		if err != nil {
			t.Fatalf("DecodeEvent failed: %v", err)
		}
		switch e.Category {
		case CategoryPermission:
			if decoded.Permission == nil || decoded.Permission.Cycle != 3 || decoded.Permission.Step != PermissionExpired {
				t.Errorf("Permission = %+v", decoded.Permission)
			}
		case CategoryError:
			if decoded.Error == nil || decoded.Error.Message != "boom" || decoded.Error.Context != "request permission" {
				t.Errorf("Error = %+v", decoded.Error)
			}
		}
	}
}

func TestEventCBORUsesIntegerKeys(t *testing.T) {
	data, err := EncodeEvent(Event{Timestamp: time.Now(), SensorID: "s", Category: CategoryState})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	var raw map[any]any
	if err := cbor.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for k := range raw {
		if _, ok := k.(uint64); !ok {
			t.Errorf("key %v (%T) is not an integer", k, k)
		}
	}
}

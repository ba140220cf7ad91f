package bearing

import (
	"fmt"
	"strconv"
)

// Status is the lifecycle status of a sensor.
type Status uint8

const (
	// StatusInitializing means no platform event has been seen yet.
	StatusInitializing Status = iota

	// StatusPending means a permission request is in flight.
	StatusPending

	// StatusReady means the sensor can deliver bearings (subject to
	// permission).
	StatusReady

	// StatusUnsupported means the platform cannot deliver bearings.
	StatusUnsupported
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "INITIALIZING"
	case StatusPending:
		return "PENDING"
	case StatusReady:
		return "READY"
	case StatusUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus parses a status name as returned by String. Matching is
// case-sensitive.
func ParseStatus(s string) (Status, error) {
	for st := StatusInitializing; st <= StatusUnsupported; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("%w: status %q", ErrUnknownName, s)
}

// Permission is the orientation permission as seen by the sensor.
type Permission uint8

const (
	// PermissionDefault means the user has not decided.
	PermissionDefault Permission = iota

	// PermissionGranted means orientation data may be used.
	PermissionGranted

	// PermissionDenied means the user refused access.
	PermissionDenied
)

// String returns the permission name.
func (p Permission) String() string {
	switch p {
	case PermissionDefault:
		return "DEFAULT"
	case PermissionGranted:
		return "GRANTED"
	case PermissionDenied:
		return "DENIED"
	default:
		return "UNKNOWN"
	}
}

// ParsePermission parses a permission name as returned by String.
func ParsePermission(s string) (Permission, error) {
	for p := PermissionDefault; p <= PermissionDenied; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: permission %q", ErrUnknownName, s)
}

// State is one published snapshot. Snapshots are never modified after
// publication; every transition builds a new one.
type State struct {
	Status     Status
	Permission Permission

	// Bearing is degrees clockwise from north in [0, 360), or nil before
	// the first accepted sample.
	Bearing *float64
}

// HasBearing reports whether a bearing is set.
func (s State) HasBearing() bool {
	return s.Bearing != nil
}

// BearingValue returns the bearing and whether it is set.
func (s State) BearingValue() (float64, bool) {
	if s.Bearing == nil {
		return 0, false
	}
	return *s.Bearing, true
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	if s.Bearing != nil {
		b := *s.Bearing
		s.Bearing = &b
	}
	return s
}

// Equal reports whether s and o describe the same state.
func (s State) Equal(o State) bool {
	if s.Status != o.Status || s.Permission != o.Permission {
		return false
	}
	if s.Bearing == nil || o.Bearing == nil {
		return s.Bearing == nil && o.Bearing == nil
	}
	return *s.Bearing == *o.Bearing
}

func (s State) String() string {
	b := "-"
	if s.Bearing != nil {
		b = strconv.FormatFloat(*s.Bearing, 'f', 1, 64)
	}
	return fmt.Sprintf("%s/%s bearing=%s", s.Status, s.Permission, b)
}

// withBearing returns a copy of s with a freshly allocated bearing.
func (s State) withBearing(deg float64) State {
	s.Bearing = &deg
	return s
}

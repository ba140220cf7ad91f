package log

import "time"

// Event is a single trace record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SensorID identifies the sensor instance (UUID unless overridden).
	SensorID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Platform is the platform family ("gated" or "ungated").
	Platform string `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Orientation *OrientationEvent `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Permission  *PermissionEvent  `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryOrientation indicates a raw orientation event.
	CategoryOrientation Category = 0
	// CategoryState indicates a published state change.
	CategoryState Category = 1
	// CategoryPermission indicates a permission cycle step.
	CategoryPermission Category = 2
	// CategoryError indicates an absorbed failure.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryOrientation:
		return "ORIENTATION"
	case CategoryState:
		return "STATE"
	case CategoryPermission:
		return "PERMISSION"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// OrientationEvent captures a raw platform event.
type OrientationEvent struct {
	// Alpha is the raw alpha field, if present.
	Alpha *float64 `cbor:"1,keyasint,omitempty"`

	// Absolute is the raw absolute flag.
	Absolute bool `cbor:"2,keyasint,omitempty"`

	// CompassHeading is the raw vendor compass heading, if present.
	CompassHeading *float64 `cbor:"3,keyasint,omitempty"`

	// Disposition records how the sensor handled the event.
	Disposition Disposition `cbor:"4,keyasint"`

	// Heading is the normalized heading offered to the throttle.
	Heading *float64 `cbor:"5,keyasint,omitempty"`
}

// Disposition records how a raw event was handled.
type Disposition uint8

const (
	// DispositionSetup means the event only primed platform detection.
	DispositionSetup Disposition = 0
	// DispositionSample means a heading was offered to the throttle.
	DispositionSample Disposition = 1
	// DispositionIgnored means the event was discarded (no permission,
	// unsupported, or no usable heading field).
	DispositionIgnored Disposition = 2
)

// String returns the disposition name.
func (d Disposition) String() string {
	switch d {
	case DispositionSetup:
		return "SETUP"
	case DispositionSample:
		return "SAMPLE"
	case DispositionIgnored:
		return "IGNORED"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures a published state transition.
type StateChangeEvent struct {
	// OldStatus is the previous status (may be empty for the initial state).
	OldStatus string `cbor:"1,keyasint,omitempty"`

	// NewStatus is the published status.
	NewStatus string `cbor:"2,keyasint"`

	// OldPermission is the previous permission.
	OldPermission string `cbor:"3,keyasint,omitempty"`

	// NewPermission is the published permission.
	NewPermission string `cbor:"4,keyasint"`

	// Bearing is the published bearing, if set.
	Bearing *float64 `cbor:"5,keyasint,omitempty"`

	// Reason for the change (if available).
	Reason string `cbor:"6,keyasint,omitempty"`
}

// PermissionEvent captures one step of a permission cycle.
type PermissionEvent struct {
	// Cycle is the permission cycle generation, starting at 1.
	Cycle uint64 `cbor:"1,keyasint"`

	// Step is what happened.
	Step PermissionStep `cbor:"2,keyasint"`
}

// PermissionStep identifies a permission cycle step.
type PermissionStep uint8

const (
	// PermissionRequested indicates a request was started.
	PermissionRequested PermissionStep = 0
	// PermissionGranted indicates the user granted access.
	PermissionGranted PermissionStep = 1
	// PermissionDenied indicates the user refused access.
	PermissionDenied PermissionStep = 2
	// PermissionFailed indicates the request failed.
	PermissionFailed PermissionStep = 3
	// PermissionConfirmed indicates a sample arrived before the deadline.
	PermissionConfirmed PermissionStep = 4
	// PermissionExpired indicates the deadline passed without a sample.
	PermissionExpired PermissionStep = 5
	// PermissionSuperseded indicates a newer cycle cancelled this cycle's
	// deadline.
	PermissionSuperseded PermissionStep = 6
	// PermissionStale indicates a result arrived for a superseded cycle and
	// was discarded.
	PermissionStale PermissionStep = 7
	// PermissionUndecided indicates the request returned without a decision.
	PermissionUndecided PermissionStep = 8
)

// Outcome reports whether the step resolves a platform request.
func (s PermissionStep) Outcome() bool {
	switch s {
	case PermissionGranted, PermissionDenied, PermissionFailed, PermissionStale, PermissionUndecided:
		return true
	default:
		return false
	}
}

// String returns the step name.
func (s PermissionStep) String() string {
	switch s {
	case PermissionRequested:
		return "REQUESTED"
	case PermissionGranted:
		return "GRANTED"
	case PermissionDenied:
		return "DENIED"
	case PermissionFailed:
		return "FAILED"
	case PermissionConfirmed:
		return "CONFIRMED"
	case PermissionExpired:
		return "EXPIRED"
	case PermissionSuperseded:
		return "SUPERSEDED"
	case PermissionStale:
		return "STALE"
	case PermissionUndecided:
		return "UNDECIDED"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures a failure the sensor absorbed.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}

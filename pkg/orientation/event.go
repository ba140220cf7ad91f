package orientation

import (
	"context"
	"time"
)

// Event is a raw device-orientation reading.
type Event struct {
	// Alpha is the rotation around the z axis in degrees, if reported.
	Alpha *float64

	// Absolute indicates the reading is relative to the earth frame.
	Absolute bool

	// CompassHeading is the vendor-specific compass heading in degrees,
	// if reported.
	CompassHeading *float64

	// Timestamp is when the platform produced the reading.
	Timestamp time.Time
}

// Float returns a pointer to v, for building Events.
func Float(v float64) *float64 {
	return &v
}

//go:generate go run github.com/vektra/mockery/v2 --name "^(Platform|GatedPlatform)$" --with-expecter --output mocks --outpkg mocks

// Platform delivers orientation events to listeners.
type Platform interface {
	// AddOrientationListener registers fn for orientation events and
	// returns a function that removes it. The returned function must be
	// safe to call multiple times.
	AddOrientationListener(fn func(Event)) (remove func())
}

// PermissionResult is the outcome of a permission request.
type PermissionResult uint8

const (
	// PermissionResultDefault means the user has not decided yet.
	PermissionResultDefault PermissionResult = iota

	// PermissionResultGranted means access was granted.
	PermissionResultGranted

	// PermissionResultDenied means access was refused.
	PermissionResultDenied
)

// String returns the result name.
func (r PermissionResult) String() string {
	switch r {
	case PermissionResultDefault:
		return "default"
	case PermissionResultGranted:
		return "granted"
	case PermissionResultDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// PermissionRequester is implemented by platforms that gate orientation
// data behind a user permission.
type PermissionRequester interface {
	// RequestPermission asks the user for access and blocks until they
	// respond or ctx is done.
	RequestPermission(ctx context.Context) (PermissionResult, error)
}

// GatedPlatform is a Platform with a permission API.
type GatedPlatform interface {
	Platform
	PermissionRequester
}

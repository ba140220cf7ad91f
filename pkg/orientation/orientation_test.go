package orientation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geotools/geotools-go/pkg/orientation"
	"github.com/geotools/geotools-go/pkg/orientation/mocks"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{720, 0},
		{-90, 270},
		{-360, 0},
		{450, 90},
		{-1e-15, 0},
	}

	for _, tt := range tests {
		got := orientation.Normalize(tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "Normalize(%v)", tt.in)
		assert.Less(t, got, 360.0)
		assert.GreaterOrEqual(t, got, 0.0)
	}
}

func TestHeadingFromRaw(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want float64
	}{
		{"North", 0, 0},
		{"FullTurn", 360, 0},
		{"East", 90, 270},
		{"South", 180, 180},
		{"West", 270, 90},
		{"Fraction", 0.5, 359.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, orientation.HeadingFromRaw(tt.raw), 1e-9)
		})
	}
}

func TestSelectSource(t *testing.T) {
	assert.Equal(t, orientation.KindUngated, orientation.SelectSource(mocks.NewPlatform(t)).Kind())
	assert.Equal(t, orientation.KindGated, orientation.SelectSource(mocks.NewGatedPlatform(t)).Kind())
}

func TestGatedSourcePrefersCompassHeading(t *testing.T) {
	src := orientation.SelectSource(mocks.NewGatedPlatform(t))

	setup := src.Setup(orientation.Event{})
	assert.True(t, setup.Supported)
	assert.False(t, setup.ImplicitGrant)

	h, ok := src.Heading(orientation.Event{
		Alpha:          orientation.Float(10),
		CompassHeading: orientation.Float(90),
	})
	assert.True(t, ok)
	assert.InDelta(t, 270, h, 1e-9)

	h, ok = src.Heading(orientation.Event{Alpha: orientation.Float(10)})
	assert.True(t, ok)
	assert.InDelta(t, 350, h, 1e-9)

	// A zero compass heading is a real reading, not a missing one.
	h, ok = src.Heading(orientation.Event{
		Alpha:          orientation.Float(10),
		CompassHeading: orientation.Float(0),
	})
	assert.True(t, ok)
	assert.InDelta(t, 0, h, 1e-9)

	_, ok = src.Heading(orientation.Event{})
	assert.False(t, ok)

	_, ok = src.Heading(orientation.Event{CompassHeading: orientation.Float(math.NaN())})
	assert.False(t, ok)
}

func TestUngatedSourceSetupFollowsAbsoluteFlag(t *testing.T) {
	src := orientation.SelectSource(mocks.NewPlatform(t))

	assert.Equal(t, orientation.Setup{Supported: true, ImplicitGrant: true}, src.Setup(orientation.Event{Absolute: true}))
	assert.Equal(t, orientation.Setup{Supported: false, ImplicitGrant: true}, src.Setup(orientation.Event{Absolute: false}))

	h, ok := src.Heading(orientation.Event{Alpha: orientation.Float(45), Absolute: true})
	assert.True(t, ok)
	assert.InDelta(t, 315, h, 1e-9)
}

func TestRotationTakesShortestPath(t *testing.T) {
	r := orientation.NewRotation(350)

	assert.InDelta(t, 370, r.Unwrap(10), 1e-9, "crossing north clockwise")
	assert.InDelta(t, 340, r.Unwrap(340), 1e-9, "back across north")
	assert.InDelta(t, 340, r.Current(), 1e-9)

	r = orientation.NewRotation(0)
	assert.InDelta(t, -90, r.Unwrap(270), 1e-9)
	assert.InDelta(t, 360, r.Rose(0), 1e-9)
}

func TestPermissionResultString(t *testing.T) {
	assert.Equal(t, "granted", orientation.PermissionResultGranted.String())
	assert.Equal(t, "denied", orientation.PermissionResultDenied.String())
	assert.Equal(t, "default", orientation.PermissionResultDefault.String())
	assert.Equal(t, "unknown", orientation.PermissionResult(9).String())
}

package orientation

import "math"

// FullCircle is the number of degrees in a full turn.
const FullCircle = 360.0

// Normalize wraps deg into [0, 360).
func Normalize(deg float64) float64 {
	d := math.Mod(deg, FullCircle)
	if d < 0 {
		d += FullCircle
	}
	// -1e-15 + 360 rounds to 360.
	if d >= FullCircle {
		d = 0
	}
	return d
}

// HeadingFromRaw converts a raw alpha or compass heading field into a
// bearing in [0, 360).
func HeadingFromRaw(raw float64) float64 {
	return Normalize(FullCircle - raw)
}

// Valid reports whether deg is a usable reading.
func Valid(deg float64) bool {
	return !math.IsNaN(deg) && !math.IsInf(deg, 0)
}

// Rotation unwraps a stream of bearings into a continuous angle so that
// crossing north does not produce a 359 degree jump. Renderers rotate by
// the continuous angle; averaging over it is also free of wrap artifacts.
type Rotation struct {
	current float64
}

// NewRotation starts unwrapping at initial degrees.
func NewRotation(initial float64) *Rotation {
	return &Rotation{current: initial}
}

// Unwrap moves the continuous angle by the shortest signed delta towards
// bearing and returns it.
func (r *Rotation) Unwrap(bearing float64) float64 {
	delta := Normalize(bearing-r.current+180) - 180
	r.current += delta
	return r.current
}

// Rose returns the counter-rotation to apply to a compass rose so that
// north stays pointing north while the device turns to bearing.
func (r *Rotation) Rose(bearing float64) float64 {
	return FullCircle - r.Unwrap(bearing)
}

// Current returns the continuous angle without moving it.
func (r *Rotation) Current() float64 {
	return r.current
}

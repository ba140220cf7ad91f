package terrain

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrOutOfBounds is returned for coordinates outside the map bounds.
	ErrOutOfBounds = errors.New("terrain: coordinate outside map")

	// ErrInvalidBounds is returned for bounds off the globe or enclosing no area.
	ErrInvalidBounds = errors.New("terrain: invalid bounds")
)

// Bounds is the geographic extent covered by the heightmap.
type Bounds struct {
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLng float64 `yaml:"min_lng"`
	MaxLng float64 `yaml:"max_lng"`
}

// DefaultBounds is the extent of the bundled Hurdal ground map.
var DefaultBounds = Bounds{
	MinLat: 60.3172171,
	MaxLat: 60.4964025,
	MinLng: 10.8153705,
	MaxLng: 11.093055,
}

// Validate checks that b encloses a non-empty area of valid coordinates.
func (b Bounds) Validate() error {
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLng < -180 || b.MaxLng > 180 {
		return fmt.Errorf("%w: %+v outside the globe", ErrInvalidBounds, b)
	}
	if b.MaxLat <= b.MinLat || b.MaxLng <= b.MinLng {
		return fmt.Errorf("%w: %+v is empty", ErrInvalidBounds, b)
	}
	return nil
}

// Contains reports whether (lat, lng) lies within b.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Plane is a heightmap-backed ground plane.
type Plane struct {
	Width, Height float64
	Bounds        Bounds
	Grid          Grid
}

// NewPlane samples img onto a plane width units wide with segX segments
// across. The height and vertical segment count follow the image aspect.
func NewPlane(img image.Image, bounds Bounds, width float64, segX int, scale float64) (*Plane, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	segY, err := SegmentsFor(b.Dx(), b.Dy(), segX)
	if err != nil {
		return nil, err
	}
	g, err := Sample(img, segX, segY, scale)
	if err != nil {
		return nil, err
	}
	return &Plane{
		Width:  width,
		Height: width / float64(b.Dx()) * float64(b.Dy()),
		Bounds: bounds,
		Grid:   g,
	}, nil
}

// Position maps a coordinate onto the plane. x grows east from the west
// edge, y grows south from the north edge.
func (p *Plane) Position(lat, lng float64) (x, y float64, err error) {
	if !p.Bounds.Contains(lat, lng) {
		return 0, 0, fmt.Errorf("%w: %.6f,%.6f", ErrOutOfBounds, lat, lng)
	}
	x = (lng - p.Bounds.MinLng) / (p.Bounds.MaxLng - p.Bounds.MinLng) * p.Width
	y = (p.Bounds.MaxLat - lat) / (p.Bounds.MaxLat - p.Bounds.MinLat) * p.Height
	return x, y, nil
}

// ElevationAt returns the elevation of the vertex nearest to (lat, lng).
func (p *Plane) ElevationAt(lat, lng float64) (float64, error) {
	x, y, err := p.Position(lat, lng)
	if err != nil {
		return 0, err
	}
	vx := int(math.Round(x / p.Width * float64(p.Grid.SegX)))
	vy := int(math.Round(y / p.Height * float64(p.Grid.SegY)))
	return p.Grid.At(vx, vy), nil
}

// Package terrain turns a heightmap image into vertex elevations for a
// segmented ground plane.
//
// The red channel of each sampled pixel is the height, scaled from
// [0, 255] to [0, scale] and rounded to whole units. Vertices are laid out
// row-major with (segX+1)*(segY+1) entries.
package terrain

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Defaults of the ground map.
const (
	DefaultScale      = 122
	DefaultSegmentsX  = 50
	DefaultPlaneWidth = 1000
)

var (
	// ErrInvalidSegments is returned for non-positive segment counts or
	// more vertices than the image has pixels to sample.
	ErrInvalidSegments = errors.New("terrain: invalid segment count")

	// ErrEmptyImage is returned for images with no pixels.
	ErrEmptyImage = errors.New("terrain: empty image")
)

// Grid holds the sampled elevations of a segmented plane.
type Grid struct {
	SegX, SegY int

	// Elevations has (SegX+1)*(SegY+1) entries, index = (SegX+1)*vy + vx.
	Elevations []float64
}

// Cols is the number of vertices per row.
func (g Grid) Cols() int { return g.SegX + 1 }

// Rows is the number of vertex rows.
func (g Grid) Rows() int { return g.SegY + 1 }

// At returns the elevation of vertex (vx, vy).
func (g Grid) At(vx, vy int) float64 {
	return g.Elevations[g.Cols()*vy+vx]
}

// Range returns the lowest and highest elevation.
func (g Grid) Range() (lo, hi float64) {
	if len(g.Elevations) == 0 {
		return 0, 0
	}
	lo, hi = g.Elevations[0], g.Elevations[0]
	for _, e := range g.Elevations[1:] {
		lo = math.Min(lo, e)
		hi = math.Max(hi, e)
	}
	return lo, hi
}

// Load decodes a heightmap from disk. PNG, JPEG, GIF, BMP and TIFF are
// supported; EXIF orientation is applied.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("terrain: load %s: %w", path, err)
	}
	return img, nil
}

// SegmentsFor derives the vertical segment count that keeps segments
// square for an image of the given size.
func SegmentsFor(width, height, segX int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, ErrEmptyImage
	}
	if segX <= 0 {
		return 0, fmt.Errorf("%w: segX=%d", ErrInvalidSegments, segX)
	}
	segY := int(math.Floor(float64(segX) / float64(width) * float64(height)))
	if segY <= 0 {
		return 0, fmt.Errorf("%w: segY=%d for %dx%d", ErrInvalidSegments, segY, width, height)
	}
	return segY, nil
}

// Sample reads one elevation per vertex of a segX by segY plane.
func Sample(img image.Image, segX, segY int, scale float64) (Grid, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return Grid{}, ErrEmptyImage
	}
	if segX <= 0 || segY <= 0 {
		return Grid{}, fmt.Errorf("%w: %dx%d", ErrInvalidSegments, segX, segY)
	}

	cols, rows := segX+1, segY+1
	if cols > w || rows > h {
		return Grid{}, fmt.Errorf("%w: %d vertices across %d pixels", ErrInvalidSegments, max(cols, rows), min(w, h))
	}

	src := imaging.Clone(img) // NRGBA with bounds at the origin
	perVertX := math.Round(float64(w) / float64(cols))
	perVertY := math.Round(float64(h) / float64(rows))

	g := Grid{SegX: segX, SegY: segY, Elevations: make([]float64, cols*rows)}
	for vy := 0; vy < rows; vy++ {
		py := min(int(math.Round(float64(vy)*perVertY)), h-1)
		for vx := 0; vx < cols; vx++ {
			px := min(int(math.Round(float64(vx)*perVertX)), w-1)
			red := src.Pix[src.PixOffset(px, py)]
			g.Elevations[cols*vy+vx] = math.Round(float64(red) / 255 * scale)
		}
	}
	return g, nil
}

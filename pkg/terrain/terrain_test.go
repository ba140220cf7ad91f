package terrain

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// heightmap returns a w x h image whose red channel is red(x, y).
func heightmap(w, h int, red func(x, y int) uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: red(x, y), G: 7, B: 9, A: 255})
		}
	}
	return img
}

func TestSegmentsFor(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		segX          int
		want          int
		wantErr       error
	}{
		{name: "landscape", width: 100, height: 50, segX: 50, want: 25},
		{name: "floors", width: 1000, height: 333, segX: 50, want: 16},
		{name: "portrait", width: 50, height: 100, segX: 10, want: 20},
		{name: "zero segX", width: 10, height: 10, segX: 0, wantErr: ErrInvalidSegments},
		{name: "too flat", width: 1000, height: 1, segX: 50, wantErr: ErrInvalidSegments},
		{name: "empty", width: 0, height: 10, segX: 5, wantErr: ErrEmptyImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SegmentsFor(tt.width, tt.height, tt.segX)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSampleReadsRedChannel(t *testing.T) {
	img := heightmap(4, 4, func(x, y int) uint8 { return uint8(10*x + 100*y) })

	g, err := Sample(img, 1, 1, 255)
	require.NoError(t, err)

	// Two vertices per axis, two pixels apart.
	assert.Equal(t, []float64{0, 20, 200, 220}, g.Elevations)
	assert.Equal(t, 2, g.Cols())
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 220.0, g.At(1, 1))
}

func TestSampleScalesAndRounds(t *testing.T) {
	img := heightmap(2, 2, func(x, y int) uint8 { return 220 })

	g, err := Sample(img, 1, 1, DefaultScale)
	require.NoError(t, err)
	for _, e := range g.Elevations {
		assert.Equal(t, 105.0, e) // 220/255*122 = 105.25
	}
}

func TestSampleClampsToLastPixel(t *testing.T) {
	img := heightmap(6, 6, func(x, y int) uint8 { return uint8(x) })

	g, err := Sample(img, 3, 3, 255)
	require.NoError(t, err)

	// round(6/4) = 2 pixels per vertex; the last vertex would read x=6.
	assert.Equal(t, []float64{0, 2, 4, 5}, g.Elevations[:4])
}

func TestSampleHonorsImageOrigin(t *testing.T) {
	full := heightmap(8, 8, func(x, y int) uint8 { return uint8(x + 10*y) })
	sub := full.SubImage(image.Rect(4, 4, 8, 8))

	g, err := Sample(sub, 1, 1, 255)
	require.NoError(t, err)
	assert.Equal(t, 44.0, g.At(0, 0))
	assert.Equal(t, 66.0, g.At(1, 1))
}

func TestSampleErrors(t *testing.T) {
	img := heightmap(4, 4, func(int, int) uint8 { return 0 })

	_, err := Sample(img, 0, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidSegments)

	_, err = Sample(img, 4, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidSegments, "five vertices cannot sample four pixels")

	_, err = Sample(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 1, 1, 1)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestGridRange(t *testing.T) {
	g := Grid{SegX: 1, SegY: 1, Elevations: []float64{5, -1, 9, 3}}
	lo, hi := g.Range()
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 9.0, hi)

	lo, hi = Grid{}.Range()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestLoadDecodesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topo.png")
	require.NoError(t, imaging.Save(heightmap(10, 5, func(x, y int) uint8 { return uint8(25 * x) }), path))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 5), img.Bounds())

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestPlane(t *testing.T) {
	img := heightmap(20, 10, func(x, y int) uint8 { return uint8(10 * x) })
	bounds := Bounds{MinLat: 60.0, MaxLat: 60.1, MinLng: 11.0, MaxLng: 11.2}

	p, err := NewPlane(img, bounds, DefaultPlaneWidth, 4, 255)
	require.NoError(t, err)
	assert.Equal(t, 500.0, p.Height)
	assert.Equal(t, 2, p.Grid.SegY)

	x, y, err := p.Position(60.1, 11.0)
	require.NoError(t, err)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)

	x, y, err = p.Position(60.05, 11.2)
	require.NoError(t, err)
	assert.InDelta(t, 1000, x, 1e-6)
	assert.InDelta(t, 250, y, 1e-6)

	// East edge: vertex 4 reads pixel min(4*4, 19) = 16.
	e, err := p.ElevationAt(60.05, 11.2)
	require.NoError(t, err)
	assert.Equal(t, 160.0, e)

	_, err = p.ElevationAt(59.0, 11.1)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = NewPlane(img, Bounds{}, 1000, 4, 1)
	assert.ErrorIs(t, err, ErrInvalidBounds)
}

func TestBoundsValidate(t *testing.T) {
	tests := []struct {
		name   string
		bounds Bounds
		ok     bool
	}{
		{name: "default", bounds: DefaultBounds, ok: true},
		{name: "zero", bounds: Bounds{}},
		{name: "inverted latitude", bounds: Bounds{MinLat: 61, MaxLat: 60, MinLng: 10, MaxLng: 11}},
		{name: "beyond pole", bounds: Bounds{MinLat: 80, MaxLat: 91, MinLng: 10, MaxLng: 11}},
		{name: "beyond antimeridian", bounds: Bounds{MinLat: 0, MaxLat: 1, MinLng: 179, MaxLng: 181}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidBounds)
			}
		})
	}
}

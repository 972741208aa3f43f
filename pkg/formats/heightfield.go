package formats

import "fmt"

// RasterTile is a decoded RGBA tile image: 4 bytes per pixel, row-major,
// first row is the top (north) edge of the tile.
type RasterTile struct {
	Width  int
	Height int
	Pix    []byte
}

// Validate checks that the pixel buffer matches the declared dimensions.
func (t *RasterTile) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrDecode, t.Width, t.Height)
	}
	if len(t.Pix) != t.Width*t.Height*4 {
		return fmt.Errorf("%w: buffer length %d, want %d for %dx%d",
			ErrDecode, len(t.Pix), t.Width*t.Height*4, t.Width, t.Height)
	}
	return nil
}

// HeightField holds normalized elevations and the range they were normalized from.
type HeightField struct {
	Width   int
	Height  int
	Samples []float32 // normalized to [0, 1], row-major

	RawMin float64 // meters
	RawMax float64 // meters

	// DisplayScale is the vertical exaggeration applied at render time.
	// It never affects Samples.
	DisplayScale float64
}

// FlatHeightField returns an all-zero field with an empty elevation range.
func FlatHeightField(width, height int) *HeightField {
	return &HeightField{
		Width:        width,
		Height:       height,
		Samples:      make([]float32, width*height),
		DisplayScale: 1,
	}
}

// Validate checks the height field invariants.
func (f *HeightField) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid height field dimensions %dx%d", f.Width, f.Height)
	}
	if len(f.Samples) != f.Width*f.Height {
		return fmt.Errorf("height field has %d samples, want %d", len(f.Samples), f.Width*f.Height)
	}
	if f.RawMax < f.RawMin {
		return fmt.Errorf("height field range inverted: min %.1f > max %.1f", f.RawMin, f.RawMax)
	}
	for i, s := range f.Samples {
		if s < 0 || s > 1 {
			return fmt.Errorf("sample %d out of range: %f", i, s)
		}
	}
	return nil
}

// IsFlat reports whether the field spans no elevation range.
func (f *HeightField) IsFlat() bool {
	return f.RawMax == f.RawMin
}

// At returns the normalized sample at (x, y), clamping coordinates to the field.
func (f *HeightField) At(x, y int) float32 {
	x = clampi(x, 0, f.Width-1)
	y = clampi(y, 0, f.Height-1)
	return f.Samples[y*f.Width+x]
}

// ElevationAt returns the elevation in meters at (x, y), reconstructed from
// the normalized sample.
func (f *HeightField) ElevationAt(x, y int) float64 {
	return f.RawMin + float64(f.At(x, y))*(f.RawMax-f.RawMin)
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

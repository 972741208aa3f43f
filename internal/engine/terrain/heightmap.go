package terrain

import (
	"github.com/Faultbox/terrainview/pkg/formats"
)

// Resample maps a height field onto a size×size displacement grid using
// nearest-neighbor sampling with edge clamping. Output rows are bottom-up so
// that texture v=1 addresses the field's top row.
func Resample(field *formats.HeightField, size int) []float32 {
	out := make([]float32, size*size)
	if field == nil || field.Width <= 0 || field.Height <= 0 {
		return out
	}

	for y := range size {
		// Flip: output row 0 is the bottom of the tile
		fy := (size - 1 - y) * field.Height / size
		row := out[y*size : (y+1)*size]
		for x := range size {
			fx := x * field.Width / size
			row[x] = field.At(fx, fy)
		}
	}

	return out
}

// FlipRGBA returns a copy of an RGBA pixel buffer with its rows reversed.
func FlipRGBA(pix []byte, width, height int) []byte {
	stride := width * 4
	out := make([]byte, len(pix))
	for y := range height {
		src := pix[y*stride : (y+1)*stride]
		dst := out[(height-1-y)*stride : (height-y)*stride]
		copy(dst, src)
	}
	return out
}

package formats

import "fmt"

// Terrain-RGB encoding constants.
const (
	elevationBase = -10000.0
	elevationStep = 0.1

	// reliefHeight is the vertical extent, in model units, a full
	// elevation range is exaggerated to at render time.
	reliefHeight = 1.5
)

// Elevation decodes the elevation in meters encoded in a terrain-RGB pixel:
// -10000 + (R*256*256 + G*256 + B) * 0.1
func Elevation(r, g, b uint8) float64 {
	return elevationBase + float64(int(r)*65536+int(g)*256+int(b))*elevationStep
}

// DecodeTerrainRGB converts an RGBA pixel buffer into a normalized height field.
// The alpha channel is ignored.
func DecodeTerrainRGB(pix []byte, width, height int) (*HeightField, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrDecode, width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: buffer length %d, want %d for %dx%d",
			ErrDecode, len(pix), width*height*4, width, height)
	}

	count := width * height
	elevations := make([]float64, count)

	minElev := Elevation(pix[0], pix[1], pix[2])
	maxElev := minElev
	for i := range count {
		o := i * 4
		e := Elevation(pix[o], pix[o+1], pix[o+2])
		elevations[i] = e
		if e < minElev {
			minElev = e
		}
		if e > maxElev {
			maxElev = e
		}
	}

	field := &HeightField{
		Width:   width,
		Height:  height,
		Samples: make([]float32, count),
		RawMin:  minElev,
		RawMax:  maxElev,
	}

	span := maxElev - minElev
	if span == 0 {
		field.DisplayScale = 1
		return field, nil
	}

	field.DisplayScale = reliefHeight / span
	for i, e := range elevations {
		field.Samples[i] = float32((e - minElev) / span)
	}

	return field, nil
}

// DecodeRasterTile decodes a fetched tile.
func DecodeRasterTile(tile *RasterTile) (*HeightField, error) {
	if tile == nil {
		return nil, fmt.Errorf("%w: nil tile", ErrDecode)
	}
	return DecodeTerrainRGB(tile.Pix, tile.Width, tile.Height)
}

// EncodeTerrainRGB encodes an elevation in meters as terrain-RGB channels,
// rounding to the nearest 0.1 m step and clamping to the encodable range.
func EncodeTerrainRGB(elevation float64) (r, g, b uint8) {
	v := int((elevation-elevationBase)/elevationStep + 0.5)
	if v < 0 {
		v = 0
	}
	if v > 0xFFFFFF {
		v = 0xFFFFFF
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

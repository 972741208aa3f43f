package formats

import (
	"errors"
	"testing"
)

func TestFlatHeightField(t *testing.T) {
	f := FlatHeightField(4, 3)

	if len(f.Samples) != 12 {
		t.Fatalf("expected 12 samples, got %d", len(f.Samples))
	}
	if f.RawMin != 0 || f.RawMax != 0 {
		t.Errorf("expected zero range, got [%f, %f]", f.RawMin, f.RawMax)
	}
	if f.DisplayScale != 1 {
		t.Errorf("expected display scale 1, got %f", f.DisplayScale)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("flat field should validate: %v", err)
	}
}

func TestHeightFieldValidate(t *testing.T) {
	tests := []struct {
		name  string
		field HeightField
		ok    bool
	}{
		{"valid", HeightField{Width: 2, Height: 1, Samples: []float32{0, 1}, RawMin: 1, RawMax: 2}, true},
		{"wrong count", HeightField{Width: 2, Height: 2, Samples: []float32{0, 1}}, false},
		{"sample above one", HeightField{Width: 1, Height: 1, Samples: []float32{1.5}}, false},
		{"negative sample", HeightField{Width: 1, Height: 1, Samples: []float32{-0.1}}, false},
		{"inverted range", HeightField{Width: 1, Height: 1, Samples: []float32{0}, RawMin: 5, RawMax: 1}, false},
		{"zero size", HeightField{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.field.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestHeightFieldAtClamps(t *testing.T) {
	f := &HeightField{Width: 2, Height: 2, Samples: []float32{0.1, 0.2, 0.3, 0.4}}

	tests := []struct {
		x, y int
		want float32
	}{
		{0, 0, 0.1},
		{1, 0, 0.2},
		{0, 1, 0.3},
		{1, 1, 0.4},
		{-5, 0, 0.1},
		{9, 9, 0.4},
		{1, -1, 0.2},
	}

	for _, tt := range tests {
		if got := f.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d, %d) = %f, want %f", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestHeightFieldElevationAt(t *testing.T) {
	f := &HeightField{Width: 2, Height: 1, Samples: []float32{0, 1}, RawMin: 100, RawMax: 300}

	if got := f.ElevationAt(0, 0); got != 100 {
		t.Errorf("expected 100, got %f", got)
	}
	if got := f.ElevationAt(1, 0); got != 300 {
		t.Errorf("expected 300, got %f", got)
	}
}

func TestRasterTileValidate(t *testing.T) {
	ok := &RasterTile{Width: 2, Height: 2, Pix: make([]byte, 16)}
	if err := ok.Validate(); err != nil {
		t.Errorf("expected valid tile, got %v", err)
	}

	bad := &RasterTile{Width: 2, Height: 2, Pix: make([]byte, 12)}
	if err := bad.Validate(); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

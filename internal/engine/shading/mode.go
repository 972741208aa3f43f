// Package shading defines the terrain shading modes and the controller that
// tracks which fragment program is bound.
package shading

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned for a shading mode outside the known set.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Mode selects the fragment program used to shade the terrain.
type Mode uint8

const (
	Gradient Mode = iota
	SourceTexture
	Normals
	Lighting

	modeCount
)

var modeNames = [modeCount]string{
	Gradient:      "gradient",
	SourceTexture: "sourceTexture",
	Normals:       "normals",
	Lighting:      "lighting",
}

// Modes returns every shading mode in selection order.
func Modes() []Mode {
	return []Mode{Gradient, SourceTexture, Normals, Lighting}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m < modeCount
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
	return modeNames[m]
}

// ParseMode converts a mode name (as used in config and flags) to a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown shading mode %q", ErrInvalidConfiguration, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: shading mode %d", ErrInvalidConfiguration, uint8(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

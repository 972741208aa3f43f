// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/Faultbox/terrainview/internal/engine/shading"
)

// DefaultTileURL is the Mapbox terrain-RGB endpoint. {z}/{x}/{y} are replaced
// with the tile address.
const DefaultTileURL = "https://api.mapbox.com/v4/mapbox.terrain-rgb/{z}/{x}/{y}.pngraw"

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Tile     TileConfig     `yaml:"tile"`
	Render   RenderConfig   `yaml:"render"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`

	ScreenshotDir string `yaml:"screenshot_dir"`
}

// TileConfig holds the tile service settings and the initial location.
type TileConfig struct {
	URLTemplate string        `yaml:"url_template"`
	AccessToken string        `yaml:"access_token"`
	Longitude   float64       `yaml:"longitude"`
	Latitude    float64       `yaml:"latitude"`
	Zoom        int           `yaml:"zoom"`
	Timeout     time.Duration `yaml:"timeout"`
}

// RenderConfig holds terrain rendering settings.
type RenderConfig struct {
	Shading       string  `yaml:"shading"`
	TextureSize   int     `yaml:"texture_size"`
	MeshSegments  int     `yaml:"mesh_segments"`
	PlaneLength   float32 `yaml:"plane_length"`
	Displacement  string  `yaml:"displacement"` // normalized | absolute
	RotationSpeed float64 `yaml:"rotation_speed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1024,
			Height:     768,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,

			ScreenshotDir: "screenshots",
		},
		Tile: TileConfig{
			URLTemplate: DefaultTileURL,
			Longitude:   -75.527,
			Latitude:    39.791,
			Zoom:        14,
			Timeout:     15 * time.Second,
		},
		Render: RenderConfig{
			Shading:       "gradient",
			TextureSize:   256,
			MeshSegments:  256,
			PlaneLength:   4,
			Displacement:  "normalized",
			RotationSpeed: math.Pi * 0.1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if _, err := c.ShadingMode(); err != nil {
		return err
	}
	switch c.Render.Displacement {
	case "normalized", "absolute":
	default:
		return fmt.Errorf("%w: unknown displacement %q", shading.ErrInvalidConfiguration, c.Render.Displacement)
	}
	if c.Render.TextureSize <= 0 || c.Render.MeshSegments <= 0 {
		return fmt.Errorf("%w: texture_size and mesh_segments must be positive", shading.ErrInvalidConfiguration)
	}
	if c.Tile.Zoom < 0 || c.Tile.Zoom > 22 {
		return fmt.Errorf("%w: zoom %d out of range [0, 22]", shading.ErrInvalidConfiguration, c.Tile.Zoom)
	}
	return nil
}

// ShadingMode parses the configured shading mode.
func (c *Config) ShadingMode() (shading.Mode, error) {
	return shading.ParseMode(c.Render.Shading)
}

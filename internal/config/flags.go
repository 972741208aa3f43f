package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagLon        = flag.Float64("lon", 0, "Tile longitude")
	flagLat        = flag.Float64("lat", 0, "Tile latitude")
	flagZoom       = flag.Int("zoom", -1, "Tile zoom level")
	flagShading    = flag.String("shading", "", "Shading mode: gradient, sourceTexture, normals or lighting")
	flagToken      = flag.String("token", "", "Tile service access token")

	flagWriteConfig = flag.Bool("write-config", false, "Write the effective config to the user config dir and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigRequested reports whether --write-config was given.
func WriteConfigRequested() bool {
	return *flagWriteConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	// (0, 0) means unset
	if *flagLon != 0 || *flagLat != 0 {
		cfg.Tile.Longitude = *flagLon
		cfg.Tile.Latitude = *flagLat
	}
	if *flagZoom >= 0 {
		cfg.Tile.Zoom = *flagZoom
	}
	if *flagShading != "" {
		cfg.Render.Shading = *flagShading
	}
	if *flagToken != "" {
		cfg.Tile.AccessToken = *flagToken
	}
}

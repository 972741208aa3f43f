package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/terrainview/internal/engine/shading"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1024 {
		t.Errorf("expected width 1024, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 768 {
		t.Errorf("expected height 768, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Tile.URLTemplate != DefaultTileURL {
		t.Errorf("expected default tile URL, got %s", cfg.Tile.URLTemplate)
	}
	if cfg.Tile.Zoom != 14 {
		t.Errorf("expected zoom 14, got %d", cfg.Tile.Zoom)
	}
	if cfg.Tile.Timeout != 15*time.Second {
		t.Errorf("expected timeout 15s, got %v", cfg.Tile.Timeout)
	}
	if cfg.Tile.AccessToken != "" {
		t.Error("default config must not carry an access token")
	}

	if cfg.Render.Shading != "gradient" {
		t.Errorf("expected gradient shading, got %s", cfg.Render.Shading)
	}
	if cfg.Render.TextureSize != 256 || cfg.Render.MeshSegments != 256 {
		t.Errorf("expected 256 texture/segments, got %d/%d", cfg.Render.TextureSize, cfg.Render.MeshSegments)
	}
	if math.Abs(cfg.Render.RotationSpeed-math.Pi*0.1) > 1e-12 {
		t.Errorf("expected rotation speed pi/10, got %f", cfg.Render.RotationSpeed)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

tile:
  url_template: "http://localhost:8080/{z}/{x}/{y}.png"
  longitude: 86.925
  latitude: 27.988
  zoom: 12
  timeout: 5s

render:
  shading: lighting
  texture_size: 512
  displacement: absolute

logging:
  level: "debug"
  log_file: "terrainview.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Tile.URLTemplate != "http://localhost:8080/{z}/{x}/{y}.png" {
		t.Errorf("unexpected url template %s", cfg.Tile.URLTemplate)
	}
	if cfg.Tile.Longitude != 86.925 || cfg.Tile.Latitude != 27.988 {
		t.Errorf("unexpected location %f, %f", cfg.Tile.Longitude, cfg.Tile.Latitude)
	}
	if cfg.Tile.Zoom != 12 {
		t.Errorf("expected zoom 12, got %d", cfg.Tile.Zoom)
	}
	if cfg.Tile.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Tile.Timeout)
	}

	mode, err := cfg.ShadingMode()
	if err != nil || mode != shading.Lighting {
		t.Errorf("expected lighting mode, got %v (%v)", mode, err)
	}
	if cfg.Render.TextureSize != 512 {
		t.Errorf("expected texture size 512, got %d", cfg.Render.TextureSize)
	}
	// Unset keys keep their defaults
	if cfg.Render.MeshSegments != 256 {
		t.Errorf("expected default mesh segments 256, got %d", cfg.Render.MeshSegments)
	}
	if cfg.Render.Displacement != "absolute" {
		t.Errorf("expected absolute displacement, got %s", cfg.Render.Displacement)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "terrainview.log" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown shading", func(c *Config) { c.Render.Shading = "phong" }},
		{"unknown displacement", func(c *Config) { c.Render.Displacement = "baked" }},
		{"zero texture size", func(c *Config) { c.Render.TextureSize = 0 }},
		{"negative segments", func(c *Config) { c.Render.MeshSegments = -4 }},
		{"zoom too deep", func(c *Config) { c.Tile.Zoom = 30 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, shading.ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "terrainview.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find terrainview.yaml in current directory")
	}
}

func TestApplyEnvToken(t *testing.T) {
	t.Setenv(TokenEnv, "pk.from-env")

	cfg := Default()
	applyEnv(cfg)
	if cfg.Tile.AccessToken != "pk.from-env" {
		t.Errorf("expected token from env, got %q", cfg.Tile.AccessToken)
	}

	cfg = Default()
	cfg.Tile.AccessToken = "pk.from-file"
	applyEnv(cfg)
	if cfg.Tile.AccessToken != "pk.from-file" {
		t.Errorf("env should not override configured token, got %q", cfg.Tile.AccessToken)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "location flags",
			setup: func() {
				*flagLon = 7.6586
				*flagLat = 45.9763
				*flagZoom = 13
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Tile.Longitude != 7.6586 || cfg.Tile.Latitude != 45.9763 {
					t.Errorf("unexpected location %f, %f", cfg.Tile.Longitude, cfg.Tile.Latitude)
				}
				if cfg.Tile.Zoom != 13 {
					t.Errorf("expected zoom 13, got %d", cfg.Tile.Zoom)
				}
			},
			teardown: func() {
				*flagLon = 0
				*flagLat = 0
				*flagZoom = -1
			},
		},
		{
			name:  "shading flag",
			setup: func() { *flagShading = "normals" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Render.Shading != "normals" {
					t.Errorf("expected normals shading, got %s", cfg.Render.Shading)
				}
			},
			teardown: func() { *flagShading = "" },
		},
		{
			name:  "token flag",
			setup: func() { *flagToken = "pk.flag" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Tile.AccessToken != "pk.flag" {
					t.Errorf("expected flag token, got %q", cfg.Tile.AccessToken)
				}
			},
			teardown: func() { *flagToken = "" },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
render:
  shading: sourceTexture
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
	if cfg.Render.Shading != "sourceTexture" {
		t.Errorf("expected sourceTexture from file, got %s", cfg.Render.Shading)
	}
}

func TestLoadRejectsInvalidShading(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  shading: toon\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, shading.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("HOME", tmpDir)
	t.Setenv("APPDATA", tmpDir)

	cfg := Default()
	cfg.Render.Shading = "lighting"
	path, err := cfg.Save()
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if path != filepath.Join(ConfigDir(), "config.yaml") {
		t.Errorf("unexpected path %s", path)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Render.Shading != "lighting" {
		t.Errorf("expected lighting after reload, got %s", loaded.Render.Shading)
	}
}

func TestWriteConfigFlag(t *testing.T) {
	if WriteConfigRequested() {
		t.Fatal("write-config should default to false")
	}
	*flagWriteConfig = true
	defer func() { *flagWriteConfig = false }()
	if !WriteConfigRequested() {
		t.Error("expected write-config to be reported")
	}
}

func TestSaveToOmitsToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Tile.AccessToken = "pk.secret"
	cfg.Tile.Zoom = 9
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Tile.Zoom != 9 {
		t.Errorf("expected zoom 9 after reload, got %d", loaded.Tile.Zoom)
	}
	if loaded.Tile.AccessToken != "" {
		t.Error("access token was written to disk")
	}
	if cfg.Tile.AccessToken != "pk.secret" {
		t.Error("SaveTo modified the in-memory config")
	}
}

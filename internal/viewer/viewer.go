// Package viewer implements the main loop of the terrain viewer.
package viewer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/config"
	"github.com/Faultbox/terrainview/internal/engine/camera"
	"github.com/Faultbox/terrainview/internal/engine/debug"
	"github.com/Faultbox/terrainview/internal/engine/input"
	"github.com/Faultbox/terrainview/internal/engine/renderer"
	"github.com/Faultbox/terrainview/internal/engine/scene"
	"github.com/Faultbox/terrainview/internal/engine/window"
	"github.com/Faultbox/terrainview/internal/logger"
	"github.com/Faultbox/terrainview/internal/tile"
)

const title = "terrainview"

// Viewer is the main viewer instance.
type Viewer struct {
	config  *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.Camera
	terrain  *scene.TerrainRenderer
	loader   *tile.Loader
	session  *session
	shots    *debug.ScreenshotCapture
}

// New creates the window, GL renderer and terrain pipeline, and requests the
// configured tile.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		config: cfg,
		log:    logger.Named("viewer"),
	}

	terrainCfg, err := terrainConfig(cfg)
	if err != nil {
		return nil, err
	}

	v.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Stringer("shading", terrainCfg.Shading),
	)

	// Window first: it owns the GL context
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w, h := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      w,
		Height:     h,
		ClearColor: [3]float32{0.05, 0.05, 0.08},
	})
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.terrain, err = scene.NewTerrainRenderer(v.renderer, terrainCfg, logger.Named("terrain"))
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create terrain renderer: %w", err)
	}

	if cfg.Tile.AccessToken == "" {
		v.log.Warn("no tile access token configured", zap.String("env", config.TokenEnv))
	}
	fetcher := tile.NewFetcher(tile.FetcherConfig{
		URLTemplate: cfg.Tile.URLTemplate,
		AccessToken: cfg.Tile.AccessToken,
		Timeout:     cfg.Tile.Timeout,
	}, logger.Named("fetcher"))
	v.loader = tile.NewLoader(fetcher, cfg.Tile.Timeout, logger.Named("loader"))

	v.input = input.New()
	v.camera = camera.New()
	v.shots = debug.NewScreenshotCapture(cfg.Graphics.ScreenshotDir, "terrain")
	v.session = &session{
		loader:  v.loader,
		terrain: v.terrain,
		log:     v.log,
	}

	v.session.request(tile.Request{
		Longitude: cfg.Tile.Longitude,
		Latitude:  cfg.Tile.Latitude,
		Zoom:      cfg.Tile.Zoom,
	})

	v.log.Info("viewer initialized")
	return v, nil
}

// terrainConfig maps the render section of the config onto the terrain renderer.
func terrainConfig(cfg *config.Config) (scene.TerrainConfig, error) {
	mode, err := cfg.ShadingMode()
	if err != nil {
		return scene.TerrainConfig{}, err
	}

	tc := scene.DefaultTerrainConfig()
	tc.Shading = mode
	if cfg.Render.TextureSize > 0 {
		tc.TextureSize = cfg.Render.TextureSize
	}
	if cfg.Render.MeshSegments > 0 {
		tc.Segments = cfg.Render.MeshSegments
	}
	if cfg.Render.PlaneLength > 0 {
		tc.PlaneLength = cfg.Render.PlaneLength
	}
	tc.Absolute = cfg.Render.Displacement == "absolute"
	tc.RotationSpeed = cfg.Render.RotationSpeed
	return tc, nil
}

// Run starts the main loop and returns when the window is closed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var minFrame time.Duration
	if v.config.Graphics.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(v.config.Graphics.FPSLimit)
	}

	v.log.Info("starting main loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		if v.session.quit {
			v.running = false
			break
		}

		if _, err := v.loader.Poll(v.terrain); err != nil {
			// The previous terrain stays on screen
			v.log.Error("tile rejected", zap.Error(err))
		}

		v.terrain.Update(float64(dt) / float64(time.Millisecond))

		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if v.session.screenshot {
			v.session.screenshot = false
			v.captureScreenshot()
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("dt", dt),
				zap.Int("relinks", v.terrain.Relinks()),
				zap.Int("uploads", v.terrain.Uploads()),
			)
			v.window.SetTitle(fmt.Sprintf("%s - %s - %s - %d fps",
				title, v.session.location.Tile(), v.terrain.ShadingMode(), frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if minFrame > 0 {
			if spent := time.Since(now); spent < minFrame {
				time.Sleep(minFrame - spent)
			}
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			w, h := v.window.DrawableSize()
			v.renderer.Resize(w, h)
		case input.EventMouseWheel:
			v.camera.Dolly(float32(event.Wheel))
		}
	}
	for _, action := range v.input.Actions() {
		v.session.apply(action)
	}
}

func (v *Viewer) captureScreenshot() {
	pix, w, h := v.renderer.ReadPixels()
	path, err := v.shots.Save(pix, w, h)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

func (v *Viewer) render() error {
	v.renderer.Begin()
	defer v.renderer.End()

	return v.terrain.Render(v.camera.ViewProj(v.renderer.Aspect()))
}

// Close releases the viewer's resources in reverse creation order.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.loader != nil {
		v.loader.Close()
	}
	if v.terrain != nil {
		v.terrain.Destroy()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

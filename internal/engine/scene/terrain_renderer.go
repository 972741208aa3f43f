// Package scene renders the displaced terrain surface.
package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/engine/gpu"
	"github.com/Faultbox/terrainview/internal/engine/scene/shaders"
	"github.com/Faultbox/terrainview/internal/engine/shading"
	"github.com/Faultbox/terrainview/internal/engine/terrain"
	"github.com/Faultbox/terrainview/pkg/formats"
)

// DefaultRotationSpeed is the terrain spin in radians per second.
const DefaultRotationSpeed = math.Pi * 0.1

// TerrainConfig contains terrain renderer options.
type TerrainConfig struct {
	TextureSize   int     // displacement texture resolution (square)
	Segments      int     // grid cells per side
	PlaneLength   float32 // grid side length in model units
	Absolute      bool    // displace by reconstructed meters
	RotationSpeed float64 // radians per second
	Shading       shading.Mode
}

// DefaultTerrainConfig returns the default terrain configuration.
func DefaultTerrainConfig() TerrainConfig {
	return TerrainConfig{
		TextureSize:   256,
		Segments:      terrain.DefaultSegments,
		PlaneLength:   terrain.DefaultLength,
		RotationSpeed: DefaultRotationSpeed,
		Shading:       shading.Gradient,
	}
}

// State is a copy of the renderer's committed terrain state.
type State struct {
	Mode         shading.Mode
	RawMin       float64
	RawMax       float64
	DisplayScale float64
	Displacement []float32 // bottom-up rows, TextureSize²
	SourceWidth  int
	SourceHeight int
	Source       []byte // top-down RGBA rows
	Angle        float64
}

// TerrainRenderer owns the terrain mesh, its two textures and the program
// bound for the active shading mode.
type TerrainRenderer struct {
	backend gpu.Backend
	log     *zap.Logger
	config  TerrainConfig

	// GPU resources
	mesh            gpu.Mesh
	displacementTex gpu.Texture
	sourceTex       gpu.Texture
	programs        map[shading.Mode]gpu.Program
	program         gpu.Program
	shading         *shading.Controller

	// Committed state
	displacement []float32
	rawMin       float64
	rawMax       float64
	displayScale float64
	source       []byte
	sourceWidth  int
	sourceHeight int
	angle        float64

	displacementDirty bool
	sourceDirty       bool

	relinks int
	uploads int
}

// NewTerrainRenderer creates the grid mesh and textures and compiles every
// shading program. The terrain starts flat.
func NewTerrainRenderer(backend gpu.Backend, cfg TerrainConfig, log *zap.Logger) (*TerrainRenderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.TextureSize <= 0 {
		return nil, fmt.Errorf("invalid displacement texture size %d", cfg.TextureSize)
	}

	tr := &TerrainRenderer{
		backend:  backend,
		log:      log,
		config:   cfg,
		programs: make(map[shading.Mode]gpu.Program),
		shading:  shading.NewController(),
	}

	if err := tr.shading.Set(cfg.Shading); err != nil {
		return nil, err
	}

	if err := tr.compilePrograms(); err != nil {
		tr.Destroy()
		return nil, err
	}

	grid := terrain.BuildGrid(cfg.Segments, cfg.PlaneLength)
	mesh, err := backend.CreateMesh(grid.Vertices, grid.Indices)
	if err != nil {
		tr.Destroy()
		return nil, fmt.Errorf("terrain mesh: %w", err)
	}
	tr.mesh = mesh

	if tr.displacementTex, err = backend.CreateTexture(gpu.FormatR32F); err != nil {
		tr.Destroy()
		return nil, fmt.Errorf("displacement texture: %w", err)
	}
	if tr.sourceTex, err = backend.CreateTexture(gpu.FormatRGBA8); err != nil {
		tr.Destroy()
		return nil, fmt.Errorf("source texture: %w", err)
	}

	tr.Reset()

	log.Debug("terrain renderer created",
		zap.Int("vertices", len(grid.Vertices)),
		zap.Int("textureSize", cfg.TextureSize),
		zap.Stringer("shading", tr.shading.Mode()),
	)

	return tr, nil
}

func (tr *TerrainRenderer) compilePrograms() error {
	for _, mode := range shading.Modes() {
		frag, err := shaders.Fragment(mode)
		if err != nil {
			return err
		}
		p, err := tr.backend.CompileProgram(shaders.TerrainVertexShader, frag)
		if err != nil {
			return fmt.Errorf("%s shader: %w", mode, err)
		}
		tr.programs[mode] = p
	}
	return nil
}

// LoadHeightField commits a new height field and, if non-nil, the tile image
// it was decoded from. Textures are uploaded on the next Render.
// A field that violates its invariants is a caller bug and panics.
func (tr *TerrainRenderer) LoadHeightField(field *formats.HeightField, source *formats.RasterTile) {
	if field == nil {
		panic("terrain: nil height field")
	}
	if err := field.Validate(); err != nil {
		panic(fmt.Sprintf("terrain: malformed height field: %v", err))
	}

	tr.displacement = terrain.Resample(field, tr.config.TextureSize)
	tr.rawMin = field.RawMin
	tr.rawMax = field.RawMax
	tr.displayScale = field.DisplayScale
	tr.displacementDirty = true

	if source != nil {
		if err := source.Validate(); err != nil {
			panic(fmt.Sprintf("terrain: malformed source tile: %v", err))
		}
		tr.source = append([]byte(nil), source.Pix...)
		tr.sourceWidth = source.Width
		tr.sourceHeight = source.Height
		tr.sourceDirty = true
	}

	tr.log.Debug("height field loaded",
		zap.Int("width", field.Width),
		zap.Int("height", field.Height),
		zap.Float64("rawMin", field.RawMin),
		zap.Float64("rawMax", field.RawMax),
		zap.Float64("displayScale", field.DisplayScale),
		zap.Bool("source", source != nil),
	)
}

// Reset flattens the terrain and clears the source image.
func (tr *TerrainRenderer) Reset() {
	size := tr.config.TextureSize
	tr.displacement = make([]float32, size*size)
	tr.rawMin = 0
	tr.rawMax = 0
	tr.displayScale = 1
	tr.displacementDirty = true

	tr.source = []byte{0, 0, 0, 0}
	tr.sourceWidth = 1
	tr.sourceHeight = 1
	tr.sourceDirty = true
}

// Update advances the terrain spin by elapsedMs milliseconds.
func (tr *TerrainRenderer) Update(elapsedMs float64) {
	tr.angle += elapsedMs * 0.001 * tr.config.RotationSpeed
	if tr.angle > 2*math.Pi {
		tr.angle = math.Mod(tr.angle, 2*math.Pi)
	}
}

// SetShadingMode selects the fragment program. Selecting the active mode does nothing.
func (tr *TerrainRenderer) SetShadingMode(mode shading.Mode) error {
	return tr.shading.Set(mode)
}

// ShadingMode returns the active shading mode.
func (tr *TerrainRenderer) ShadingMode() shading.Mode {
	return tr.shading.Mode()
}

// Render uploads pending texture data, relinks the program if the shading
// mode changed and draws the terrain.
func (tr *TerrainRenderer) Render(viewProj mgl32.Mat4) error {
	if tr.mesh == 0 {
		return nil
	}

	if err := tr.flushTextures(); err != nil {
		return err
	}

	if tr.shading.Dirty() {
		mode := tr.shading.Mode()
		p, ok := tr.programs[mode]
		if !ok {
			return fmt.Errorf("%w: no program for %v", shading.ErrInvalidConfiguration, mode)
		}
		// A->B->A between frames ends on the bound program
		if p != tr.program {
			tr.program = p
			tr.relinks++
			tr.log.Debug("shading program relinked", zap.Stringer("mode", mode))
		}
		tr.shading.Clean()
	}

	tr.backend.BindProgram(tr.program, gpu.Uniforms{
		ViewProj:     viewProj,
		Model:        tr.ModelMatrix(),
		RawMin:       float32(tr.rawMin),
		RawMax:       float32(tr.rawMax),
		DisplayScale: float32(tr.displayScale),
		Absolute:     tr.config.Absolute,
		TexelSize:    1 / float32(tr.config.TextureSize),
		Displacement: tr.displacementTex,
		Source:       tr.sourceTex,
	})
	tr.backend.DrawFrame(tr.mesh)

	return nil
}

func (tr *TerrainRenderer) flushTextures() error {
	if tr.displacementDirty {
		size := tr.config.TextureSize
		err := tr.backend.UploadTexture(tr.displacementTex, gpu.TextureData{
			Width:  size,
			Height: size,
			Floats: tr.displacement,
		})
		if err != nil {
			return fmt.Errorf("upload displacement: %w", err)
		}
		tr.displacementDirty = false
		tr.uploads++
	}

	if tr.sourceDirty {
		err := tr.backend.UploadTexture(tr.sourceTex, gpu.TextureData{
			Width:  tr.sourceWidth,
			Height: tr.sourceHeight,
			Bytes:  terrain.FlipRGBA(tr.source, tr.sourceWidth, tr.sourceHeight),
		})
		if err != nil {
			return fmt.Errorf("upload source: %w", err)
		}
		tr.sourceDirty = false
		tr.uploads++
	}

	return nil
}

// ModelMatrix returns the terrain transform: the plane is laid flat so its
// +z normal points up, then spun about that axis.
func (tr *TerrainRenderer) ModelMatrix() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(-math.Pi / 2).Mul4(mgl32.HomogRotate3DZ(float32(tr.angle)))
}

// Snapshot returns a copy of the committed state.
func (tr *TerrainRenderer) Snapshot() State {
	return State{
		Mode:         tr.shading.Mode(),
		RawMin:       tr.rawMin,
		RawMax:       tr.rawMax,
		DisplayScale: tr.displayScale,
		Displacement: append([]float32(nil), tr.displacement...),
		SourceWidth:  tr.sourceWidth,
		SourceHeight: tr.sourceHeight,
		Source:       append([]byte(nil), tr.source...),
		Angle:        tr.angle,
	}
}

// Relinks returns how many times a program was relinked for a mode change.
func (tr *TerrainRenderer) Relinks() int {
	return tr.relinks
}

// Uploads returns how many texture uploads have been issued.
func (tr *TerrainRenderer) Uploads() int {
	return tr.uploads
}

// Destroy releases all GPU resources.
func (tr *TerrainRenderer) Destroy() {
	if tr.mesh != 0 {
		tr.backend.DeleteMesh(tr.mesh)
		tr.mesh = 0
	}
	if tr.displacementTex != 0 {
		tr.backend.DeleteTexture(tr.displacementTex)
		tr.displacementTex = 0
	}
	if tr.sourceTex != 0 {
		tr.backend.DeleteTexture(tr.sourceTex)
		tr.sourceTex = 0
	}
	for mode, p := range tr.programs {
		tr.backend.DeleteProgram(p)
		delete(tr.programs, mode)
	}
	tr.program = 0
}

// Package renderer implements the gpu.Backend interface on OpenGL 4.1 core.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/engine/gpu"
	"github.com/Faultbox/terrainview/internal/engine/shader"
	"github.com/Faultbox/terrainview/internal/logger"
)

// Texture units used by the terrain programs.
const (
	unitDisplacement = 0
	unitSource       = 1
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [3]float32
}

// Renderer handles all OpenGL rendering.
// IMPORTANT: all methods must be called from the thread owning the GL context.
type Renderer struct {
	config Config

	textures map[gpu.Texture]gpu.TextureFormat
	meshes   map[gpu.Mesh]*meshBuffers
	programs map[gpu.Program]*programLocations
}

type meshBuffers struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

type programLocations struct {
	viewProj     int32
	model        int32
	displacement int32
	source       int32
	rawMin       int32
	rawMax       int32
	displayScale int32
	absolute     int32
	texelSize    int32
}

var _ gpu.Backend = (*Renderer)(nil)

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		textures: make(map[gpu.Texture]gpu.TextureFormat),
		meshes:   make(map[gpu.Mesh]*meshBuffers),
		programs: make(map[gpu.Program]*programLocations),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], 1.0)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// Close releases every resource still owned by the renderer.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for m := range r.meshes {
		r.DeleteMesh(m)
	}
	for tex := range r.textures {
		r.DeleteTexture(tex)
	}
	for p := range r.programs {
		r.DeleteProgram(p)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.UseProgram(0)
}

// ReadPixels reads the framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	pix := make([]byte, w*h*4)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pix[0]))
	return pix, w, h
}

// CreateTexture allocates a texture object with filtering suited to format.
func (r *Renderer) CreateTexture(format gpu.TextureFormat) (gpu.Texture, error) {
	var texID uint32
	gl.GenTextures(1, &texID)
	if texID == 0 {
		return 0, fmt.Errorf("glGenTextures returned 0")
	}
	gl.BindTexture(gl.TEXTURE_2D, texID)

	switch format {
	case gpu.FormatR32F:
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	case gpu.FormatRGBA8:
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	default:
		gl.DeleteTextures(1, &texID)
		return 0, fmt.Errorf("unsupported texture format %d", format)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex := gpu.Texture(texID)
	r.textures[tex] = format
	return tex, nil
}

// UploadTexture replaces the full texture image.
func (r *Renderer) UploadTexture(tex gpu.Texture, data gpu.TextureData) error {
	format, ok := r.textures[tex]
	if !ok {
		return fmt.Errorf("unknown texture %d", tex)
	}
	if data.Width <= 0 || data.Height <= 0 {
		return fmt.Errorf("invalid texture size %dx%d", data.Width, data.Height)
	}

	texels := data.Width * data.Height
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))

	switch format {
	case gpu.FormatR32F:
		if len(data.Floats) != texels {
			return fmt.Errorf("R32F upload: %d floats for %dx%d", len(data.Floats), data.Width, data.Height)
		}
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R32F,
			int32(data.Width), int32(data.Height),
			0, gl.RED, gl.FLOAT, unsafe.Pointer(&data.Floats[0]))
	case gpu.FormatRGBA8:
		if len(data.Bytes) != texels*4 {
			return fmt.Errorf("RGBA8 upload: %d bytes for %dx%d", len(data.Bytes), data.Width, data.Height)
		}
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
			int32(data.Width), int32(data.Height),
			0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&data.Bytes[0]))
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// CreateMesh uploads vertices and indices into a VAO.
func (r *Renderer) CreateMesh(vertices []gpu.Vertex, indices []uint32) (gpu.Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return 0, fmt.Errorf("empty mesh")
	}

	mb := &meshBuffers{indexCount: int32(len(indices))}

	gl.GenVertexArrays(1, &mb.vao)
	gl.BindVertexArray(mb.vao)

	// VBO
	gl.GenBuffers(1, &mb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	vertexSize := int(unsafe.Sizeof(gpu.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*vertexSize, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)

	// UV (location 1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	// EBO
	gl.GenBuffers(1, &mb.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	m := gpu.Mesh(mb.vao)
	r.meshes[m] = mb

	logger.Debug("mesh created",
		zap.Uint32("vao", mb.vao),
		zap.Int("vertices", len(vertices)),
		zap.Int("indices", len(indices)),
	)
	return m, nil
}

// CompileProgram compiles and links a program and caches its uniform locations.
func (r *Renderer) CompileProgram(vertexSrc, fragmentSrc string) (gpu.Program, error) {
	program, err := shader.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, err
	}

	r.programs[gpu.Program(program)] = &programLocations{
		viewProj:     shader.GetUniform(program, "uViewProj"),
		model:        shader.GetUniform(program, "uModel"),
		displacement: shader.GetUniform(program, "uDisplacement"),
		source:       shader.GetUniform(program, "uSource"),
		rawMin:       shader.GetUniform(program, "uRawMin"),
		rawMax:       shader.GetUniform(program, "uRawMax"),
		displayScale: shader.GetUniform(program, "uDisplayScale"),
		absolute:     shader.GetUniform(program, "uAbsolute"),
		texelSize:    shader.GetUniform(program, "uTexelSize"),
	}

	logger.Debug("shader program created", zap.Uint32("program", program))
	return gpu.Program(program), nil
}

// BindProgram makes p current and sets its uniforms and texture units.
// Uniforms the linker optimized out have location -1, which GL ignores.
func (r *Renderer) BindProgram(p gpu.Program, u gpu.Uniforms) {
	loc, ok := r.programs[p]
	if !ok {
		return
	}

	gl.UseProgram(uint32(p))

	gl.UniformMatrix4fv(loc.viewProj, 1, false, &u.ViewProj[0])
	gl.UniformMatrix4fv(loc.model, 1, false, &u.Model[0])
	gl.Uniform1f(loc.rawMin, u.RawMin)
	gl.Uniform1f(loc.rawMax, u.RawMax)
	gl.Uniform1f(loc.displayScale, u.DisplayScale)
	gl.Uniform1f(loc.texelSize, u.TexelSize)
	if u.Absolute {
		gl.Uniform1i(loc.absolute, 1)
	} else {
		gl.Uniform1i(loc.absolute, 0)
	}

	gl.ActiveTexture(gl.TEXTURE0 + unitDisplacement)
	gl.BindTexture(gl.TEXTURE_2D, uint32(u.Displacement))
	gl.Uniform1i(loc.displacement, unitDisplacement)

	gl.ActiveTexture(gl.TEXTURE0 + unitSource)
	gl.BindTexture(gl.TEXTURE_2D, uint32(u.Source))
	gl.Uniform1i(loc.source, unitSource)
}

// DrawFrame draws the mesh with the bound program.
func (r *Renderer) DrawFrame(m gpu.Mesh) {
	mb, ok := r.meshes[m]
	if !ok {
		return
	}
	gl.BindVertexArray(mb.vao)
	gl.DrawElements(gl.TRIANGLES, mb.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// DeleteTexture releases a texture.
func (r *Renderer) DeleteTexture(tex gpu.Texture) {
	if _, ok := r.textures[tex]; !ok {
		return
	}
	id := uint32(tex)
	gl.DeleteTextures(1, &id)
	delete(r.textures, tex)
}

// DeleteMesh releases a mesh's VAO and buffers.
func (r *Renderer) DeleteMesh(m gpu.Mesh) {
	mb, ok := r.meshes[m]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &mb.vao)
	gl.DeleteBuffers(1, &mb.vbo)
	gl.DeleteBuffers(1, &mb.ebo)
	delete(r.meshes, m)
}

// DeleteProgram releases a program.
func (r *Renderer) DeleteProgram(p gpu.Program) {
	if _, ok := r.programs[p]; !ok {
		return
	}
	gl.DeleteProgram(uint32(p))
	delete(r.programs, p)
}

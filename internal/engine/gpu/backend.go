// Package gpu defines the rendering capabilities the terrain pipeline needs
// from a graphics backend.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Handles are opaque backend identifiers. Zero is never a valid handle.
type (
	Texture uint32
	Mesh    uint32
	Program uint32
)

// TextureFormat is the texel layout of a texture.
type TextureFormat uint8

const (
	// FormatR32F stores one float32 per texel.
	FormatR32F TextureFormat = iota
	// FormatRGBA8 stores four bytes per texel.
	FormatRGBA8
)

// TextureData is a full texture image. Floats is used for FormatR32F,
// Bytes for FormatRGBA8. Rows are bottom-up (OpenGL convention).
type TextureData struct {
	Width  int
	Height int
	Floats []float32
	Bytes  []byte
}

// Vertex is a mesh vertex: position in model space and texture coordinate.
type Vertex struct {
	Position [3]float32
	UV       [2]float32
}

// Uniforms are the per-frame parameters consumed by the terrain programs.
type Uniforms struct {
	ViewProj     mgl32.Mat4
	Model        mgl32.Mat4
	RawMin       float32
	RawMax       float32
	DisplayScale float32
	Absolute     bool    // displace by reconstructed meters instead of normalized height
	TexelSize    float32 // 1 / displacement texture size

	Displacement Texture
	Source       Texture
}

// Backend is implemented by a concrete graphics API. All calls happen on the
// render thread.
type Backend interface {
	CreateTexture(format TextureFormat) (Texture, error)
	UploadTexture(tex Texture, data TextureData) error
	CreateMesh(vertices []Vertex, indices []uint32) (Mesh, error)
	CompileProgram(vertexSrc, fragmentSrc string) (Program, error)
	BindProgram(p Program, u Uniforms)
	DrawFrame(m Mesh)

	DeleteTexture(tex Texture)
	DeleteMesh(m Mesh)
	DeleteProgram(p Program)
}

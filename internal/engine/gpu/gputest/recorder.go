// Package gputest provides a gpu.Backend that records calls instead of
// talking to a GPU.
package gputest

import (
	"errors"

	"github.com/Faultbox/terrainview/internal/engine/gpu"
)

// Recorder is an in-memory gpu.Backend for tests.
type Recorder struct {
	next uint32

	Textures map[gpu.Texture]gpu.TextureData
	Formats  map[gpu.Texture]gpu.TextureFormat
	Meshes   map[gpu.Mesh]int
	Programs map[gpu.Program]string

	Uploads  int
	Binds    []gpu.Program
	Uniforms gpu.Uniforms
	Draws    int
	Compiles int

	// FailCompile makes every CompileProgram call fail.
	FailCompile bool
}

var _ gpu.Backend = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Textures: make(map[gpu.Texture]gpu.TextureData),
		Formats:  make(map[gpu.Texture]gpu.TextureFormat),
		Meshes:   make(map[gpu.Mesh]int),
		Programs: make(map[gpu.Program]string),
	}
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) CreateTexture(format gpu.TextureFormat) (gpu.Texture, error) {
	tex := gpu.Texture(r.handle())
	r.Formats[tex] = format
	return tex, nil
}

func (r *Recorder) UploadTexture(tex gpu.Texture, data gpu.TextureData) error {
	if _, ok := r.Formats[tex]; !ok {
		return errors.New("unknown texture")
	}
	r.Textures[tex] = data
	r.Uploads++
	return nil
}

func (r *Recorder) CreateMesh(vertices []gpu.Vertex, indices []uint32) (gpu.Mesh, error) {
	m := gpu.Mesh(r.handle())
	r.Meshes[m] = len(indices)
	return m, nil
}

func (r *Recorder) CompileProgram(vertexSrc, fragmentSrc string) (gpu.Program, error) {
	if r.FailCompile {
		return 0, errors.New("compile failed")
	}
	p := gpu.Program(r.handle())
	r.Programs[p] = fragmentSrc
	r.Compiles++
	return p, nil
}

func (r *Recorder) BindProgram(p gpu.Program, u gpu.Uniforms) {
	r.Binds = append(r.Binds, p)
	r.Uniforms = u
}

func (r *Recorder) DrawFrame(m gpu.Mesh) {
	r.Draws++
}

func (r *Recorder) DeleteTexture(tex gpu.Texture) {
	delete(r.Formats, tex)
	delete(r.Textures, tex)
}

func (r *Recorder) DeleteMesh(m gpu.Mesh) {
	delete(r.Meshes, m)
}

func (r *Recorder) DeleteProgram(p gpu.Program) {
	delete(r.Programs, p)
}

// LastBind returns the most recently bound program, or 0.
func (r *Recorder) LastBind() gpu.Program {
	if len(r.Binds) == 0 {
		return 0
	}
	return r.Binds[len(r.Binds)-1]
}

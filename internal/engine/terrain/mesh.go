package terrain

import "github.com/Faultbox/terrainview/internal/engine/gpu"

// Default grid dimensions.
const (
	DefaultSegments = 256
	DefaultLength   = 4.0
)

// BuildGrid creates a square plane centered on the origin with segments cells
// per side. UV (0,0) is the bottom-left corner, (1,1) the top-right.
func BuildGrid(segments int, length float32) *Grid {
	if segments < 1 {
		segments = 1
	}
	side := segments + 1
	half := length / 2
	step := length / float32(segments)

	vertices := make([]gpu.Vertex, 0, side*side)
	for j := range side {
		for i := range side {
			u := float32(i) / float32(segments)
			v := float32(j) / float32(segments)
			vertices = append(vertices, gpu.Vertex{
				Position: [3]float32{-half + float32(i)*step, -half + float32(j)*step, 0},
				UV:       [2]float32{u, v},
			})
		}
	}

	// Two counter-clockwise triangles per cell, facing +z
	indices := make([]uint32, 0, segments*segments*6)
	for j := range segments {
		for i := range segments {
			bl := uint32(j*side + i)
			br := bl + 1
			tl := bl + uint32(side)
			tr := tl + 1
			indices = append(indices, bl, br, tr, bl, tr, tl)
		}
	}

	return &Grid{
		Vertices: vertices,
		Indices:  indices,
		Segments: segments,
		Length:   length,
		Bounds: Bounds{
			Min: [3]float32{-half, -half, 0},
			Max: [3]float32{half, half, 0},
		},
	}
}

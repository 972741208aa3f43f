// Package terrain builds the terrain grid mesh and the displacement texels
// sampled from a height field.
package terrain

import "github.com/Faultbox/terrainview/internal/engine/gpu"

// Grid holds the flat tessellated plane ready for GPU upload.
// The plane lies in the model x-y plane with its normal along +z.
type Grid struct {
	Vertices []gpu.Vertex
	Indices  []uint32
	Segments int     // cells per side
	Length   float32 // side length in model units
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of the grid.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

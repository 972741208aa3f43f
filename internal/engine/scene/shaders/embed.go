// Package shaders provides embedded GLSL shader sources.
package shaders

import (
	_ "embed"
	"fmt"

	"github.com/Faultbox/terrainview/internal/engine/shading"
)

// TerrainVertexShader displaces the grid by the height texture and computes normals.
// It is shared by every fragment program.
//
//go:embed terrain.vert
var TerrainVertexShader string

// GradientFragmentShader maps height to a red/blue gradient.
//
//go:embed gradient.frag
var GradientFragmentShader string

// SourceTextureFragmentShader samples the raw tile image.
//
//go:embed source.frag
var SourceTextureFragmentShader string

// NormalsFragmentShader writes normals as color.
//
//go:embed normals.frag
var NormalsFragmentShader string

// LightingFragmentShader lights the surface with a fixed directional light.
//
//go:embed lighting.frag
var LightingFragmentShader string

// Fragment returns the fragment shader source for mode.
func Fragment(mode shading.Mode) (string, error) {
	switch mode {
	case shading.Gradient:
		return GradientFragmentShader, nil
	case shading.SourceTexture:
		return SourceTextureFragmentShader, nil
	case shading.Normals:
		return NormalsFragmentShader, nil
	case shading.Lighting:
		return LightingFragmentShader, nil
	default:
		return "", fmt.Errorf("%w: no fragment program for %v", shading.ErrInvalidConfiguration, mode)
	}
}

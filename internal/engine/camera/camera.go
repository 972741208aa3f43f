// Package camera provides camera implementations for 3D rendering.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a fixed perspective camera looking at a target point.
type Camera struct {
	FOV    float32 // Vertical field of view (radians)
	Near   float32
	Far    float32
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3

	// Constraints for Dolly
	MinDistance float32
	MaxDistance float32
}

// New creates the terrain viewing camera: 75 degree FOV, looking down at the
// origin from slightly above and in front of the plane.
func New() *Camera {
	return &Camera{
		FOV:         mgl32.DegToRad(75),
		Near:        0.1,
		Far:         1000,
		Eye:         mgl32.Vec3{0, 2, 3.5},
		Target:      mgl32.Vec3{0, 0, 0},
		Up:          mgl32.Vec3{0, 1, 0},
		MinDistance: 1,
		MaxDistance: 50,
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// ProjectionMatrix returns the perspective projection for the given aspect ratio.
func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewProj returns projection * view.
func (c *Camera) ViewProj(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}

// Distance returns the distance from eye to target.
func (c *Camera) Distance() float32 {
	return c.Eye.Sub(c.Target).Len()
}

// Dolly moves the eye along the view direction. Positive delta moves closer.
func (c *Camera) Dolly(delta float32) {
	offset := c.Eye.Sub(c.Target)
	dist := offset.Len()
	if dist == 0 {
		return
	}

	next := dist - delta*dist*0.1
	if next < c.MinDistance {
		next = c.MinDistance
	}
	if next > c.MaxDistance {
		next = c.MaxDistance
	}
	c.Eye = c.Target.Add(offset.Mul(next / dist))
}

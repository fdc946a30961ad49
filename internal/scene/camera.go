// Package scene owns the camera, light, mesh and material, and runs the
// per-frame render loop.
package scene

import "audio-sphere/internal/mathutil"

// Camera defaults.
const (
	DefaultFOV     = 75.0
	DefaultNear    = 0.1
	DefaultFar     = 1000.0
	DefaultCameraZ = 100.0
)

// Camera is a perspective camera looking down -Z.
type Camera struct {
	FOV      float64 // vertical, degrees
	Aspect   float64
	Near     float64
	Far      float64
	Position mathutil.Vec3

	projection mathutil.Mat4
}

// NewCamera builds a camera and its projection matrix.
func NewCamera(fov, aspect, near, far float64, position mathutil.Vec3) *Camera {
	c := &Camera{FOV: fov, Aspect: aspect, Near: near, Far: far, Position: position}
	c.UpdateProjection()
	return c
}

// SetAspect changes the aspect ratio and recomputes the projection.
func (c *Camera) SetAspect(aspect float64) {
	c.Aspect = aspect
	c.UpdateProjection()
}

// UpdateProjection recomputes the projection from the public fields.
func (c *Camera) UpdateProjection() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = mathutil.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// Projection returns the cached projection matrix.
func (c *Camera) Projection() mathutil.Mat4 { return c.projection }

// View returns the world-to-camera matrix.
func (c *Camera) View() mathutil.Mat4 {
	return mathutil.Translate(c.Position.Scale(-1))
}

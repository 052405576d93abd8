package renderer

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Camera is a pinhole camera described by a position and a view direction.
// WorldUp stays fixed while the camera moves and turns.
type Camera struct {
	Position  core.Vec3 `json:"position"`
	Direction core.Vec3 `json:"direction"`
	WorldUp   core.Vec3 `json:"up"`
	FovY      float64   `json:"fov"` // Vertical field of view in degrees
	Near      float64   `json:"near"`
	Far       float64   `json:"far"`
}

// NewLookAtCamera creates a camera at position looking toward target
func NewLookAtCamera(position, target, up core.Vec3, fovY, near, far float64) *Camera {
	return &Camera{
		Position:  position,
		Direction: target.Subtract(position).Normalize(),
		WorldUp:   up.Normalize(),
		FovY:      fovY,
		Near:      near,
		Far:       far,
	}
}

// View returns the world-to-camera matrix
func (c *Camera) View() mgl64.Mat4 {
	eye := toMgl(c.Position)
	return mgl64.LookAtV(eye, eye.Add(toMgl(c.Direction)), toMgl(c.WorldUp))
}

// Projection returns the perspective projection for an image aspect ratio
func (c *Camera) Projection(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// Right returns the unit vector to the camera's right
func (c *Camera) Right() core.Vec3 {
	return c.Direction.Cross(c.WorldUp).Normalize()
}

// Move translates the camera along its view direction, its right vector and world up
func (c *Camera) Move(forward, right, up float64) {
	offset := c.Direction.Multiply(forward).
		Add(c.Right().Multiply(right)).
		Add(c.WorldUp.Multiply(up))
	c.Position = c.Position.Add(offset)
}

// Rotate turns the view direction by yaw degrees about world up and pitch
// degrees about the right vector. Positive yaw turns left, positive pitch looks up.
func (c *Camera) Rotate(yaw, pitch float64) {
	up := c.WorldUp.Normalize()
	yawM := mgl64.HomogRotate3D(mgl64.DegToRad(yaw), toMgl(up))
	pitchM := mgl64.HomogRotate3D(mgl64.DegToRad(pitch), toMgl(c.Right()))
	d := pitchM.Mul4(yawM).Mul4x1(toMgl(c.Direction).Vec4(0))
	dir := core.NewVec3(d[0], d[1], d[2]).Normalize()

	// Never rotate onto the up axis, the view basis would collapse
	if dir.Cross(up).Length() < 1e-3 {
		return
	}
	c.Direction = dir
}

func toMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

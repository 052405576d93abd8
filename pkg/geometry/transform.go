package geometry

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Transform places a model in the world. Rotation holds Euler angles in degrees,
// applied about X, then Y, then Z, after scaling and before translation.
type Transform struct {
	Translation core.Vec3
	Rotation    core.Vec3
	Scale       core.Vec3
}

// IdentityTransform returns a transform that leaves vertices unchanged
func IdentityTransform() Transform {
	return Transform{Scale: core.Splat(1)}
}

// Translate returns a pure translation
func Translate(offset core.Vec3) Transform {
	tr := IdentityTransform()
	tr.Translation = offset
	return tr
}

// Matrix returns the model matrix T·Rz·Ry·Rx·S
func (t Transform) Matrix() mgl64.Mat4 {
	scale := t.Scale
	if scale.IsZero() {
		scale = core.Splat(1)
	}

	m := mgl64.Translate3D(t.Translation.X, t.Translation.Y, t.Translation.Z)
	m = m.Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(t.Rotation.Z)))
	m = m.Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(t.Rotation.Y)))
	m = m.Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(t.Rotation.X)))
	return m.Mul4(mgl64.Scale3D(scale.X, scale.Y, scale.Z))
}

// TransformPoint applies m to a position
func TransformPoint(m mgl64.Mat4, p core.Vec3) core.Vec3 {
	r := m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	if r[3] != 0 && r[3] != 1 {
		return core.NewVec3(r[0]/r[3], r[1]/r[3], r[2]/r[3])
	}
	return core.NewVec3(r[0], r[1], r[2])
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of m
func NormalMatrix(m mgl64.Mat4) mgl64.Mat3 {
	return m.Mat3().Inv().Transpose()
}

// TransformNormal applies a normal matrix and renormalizes
func TransformNormal(nm mgl64.Mat3, n core.Vec3) core.Vec3 {
	r := nm.Mul3x1(mgl64.Vec3{n.X, n.Y, n.Z})
	return core.NewVec3(r[0], r[1], r[2]).Normalize()
}

package core

import "math"

// InvalidID marks an unset geometry, primitive or instance identifier on a Ray
const InvalidID = -1

// Ray is a parametric segment Origin + t*Direction valid for t in [TNear, TFar].
//
// The intersection oracle fills the hit fields in place: TFar becomes the hit
// distance, GeomNormal the unnormalized face normal, U and V the barycentric
// coordinates of the hit relative to the second and third vertex, and the ID
// fields identify what was hit. A ray is owned by the goroutine that created
// it and is never shared.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TNear     float64
	TFar      float64
	Time      float64
	Mask      uint32

	GeomNormal Vec3
	U, V       float64
	GeomID     int
	PrimID     int
	InstID     int
}

// NewRay creates a ray with the full [0, +inf) interval and no hit recorded
func NewRay(origin, direction Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		TNear:     0,
		TFar:      math.MaxFloat64,
		Mask:      ^uint32(0),
		GeomID:    InvalidID,
		PrimID:    InvalidID,
		InstID:    InvalidID,
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// HasHit reports whether the oracle recorded a hit on this ray
func (r Ray) HasHit() bool {
	return r.GeomID != InvalidID
}

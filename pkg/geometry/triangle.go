package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// IntersectTriangle tests a ray against triangle (v0, v1, v2) using the Möller-Trumbore algorithm.
// On a hit inside [tMin, tMax] it returns the ray parameter and the barycentric weights of v1 and v2;
// the weight of v0 is 1-u-v.
func IntersectTriangle(origin, direction, v0, v1, v2 core.Vec3, tMin, tMax float64) (t, u, v float64, ok bool) {
	const epsilon = 1e-8

	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)

	h := direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle
	if a > -epsilon && a < epsilon {
		return 0, 0, 0, false
	}

	f := 1.0 / a
	s := origin.Subtract(v0)
	u = f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v = f * direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, 0, 0, false
	}

	t = f * edge2.Dot(q)
	if t < tMin || t > tMax {
		return 0, 0, 0, false
	}

	return t, u, v, true
}

// FaceNormal returns the unnormalized normal (v1-v0)×(v2-v0), whose length is twice the area
func FaceNormal(v0, v1, v2 core.Vec3) core.Vec3 {
	return v1.Subtract(v0).Cross(v2.Subtract(v0))
}

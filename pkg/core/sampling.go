package core

import (
	"math"
	"math/rand"
)

// Sampler provides uniform random numbers to the sampling routines.
// A Sampler is owned by exactly one worker and is not safe for concurrent use.
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own deterministic stream
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// ConcentricSampleDisk maps a point in [0,1)^2 onto the unit disk using
// Shirley's concentric mapping, which preserves relative areas.
func ConcentricSampleDisk(u Vec2) (float64, float64) {
	sx := 2*u.X - 1
	sy := 2*u.Y - 1
	if sx == 0 && sy == 0 {
		return 0, 0
	}

	// theta is measured in units of pi/4 until the end
	var r, theta float64
	if sx >= -sy {
		if sx > sy {
			r = sx
			if sy > 0 {
				theta = sy / r
			} else {
				theta = 8 + sy/r
			}
		} else {
			r = sy
			theta = 2 - sx/r
		}
	} else {
		if sx <= sy {
			r = -sx
			theta = 4 - sy/r
		} else {
			r = -sy
			theta = 6 + sx/r
		}
	}
	theta *= math.Pi / 4

	return r * math.Cos(theta), r * math.Sin(theta)
}

// CosineSampleHemisphere returns a direction on the +Z hemisphere with density cos(theta)/pi
func CosineSampleHemisphere(u Vec2) Vec3 {
	x, y := ConcentricSampleDisk(u)
	z := math.Sqrt(math.Max(0, 1-x*x-y*y))
	return NewVec3(x, y, z)
}

// Perpendicular returns a vector orthogonal to v. The component to drop is
// chosen so the result never degenerates for unit-length input.
func Perpendicular(v Vec3) Vec3 {
	if math.Abs(v.X) < math.Abs(v.Y) {
		return NewVec3(0, -v.Z, v.Y)
	}
	return NewVec3(-v.Z, 0, v.X)
}

// SameHemisphere reports whether wi and wo lie on the same side of the plane with normal n
func SameHemisphere(wi, wo, n Vec3) bool {
	return sign(wo.Dot(n)) == sign(wi.Dot(n))
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Frame is an orthonormal basis whose Z axis is a surface normal
type Frame struct {
	Tangent, Bitangent, Normal Vec3
}

// NewFrame builds the local shading frame around unit normal n
func NewFrame(n Vec3) Frame {
	tangent := Perpendicular(n).Normalize()
	bitangent := tangent.Cross(n).Normalize()
	return Frame{Tangent: tangent, Bitangent: bitangent, Normal: n}
}

// ToWorld transforms a local-frame direction into world space
func (f Frame) ToWorld(local Vec3) Vec3 {
	return f.Tangent.Multiply(local.X).
		Add(f.Bitangent.Multiply(local.Y)).
		Add(f.Normal.Multiply(local.Z))
}

package environment

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Environment is a latitude-longitude radiance map around the scene.
// +Y is up; the top row of the map is the zenith.
type Environment struct {
	Map        *HDRImage
	Multiplier float64
}

// New creates an environment over an HDR map
func New(m *HDRImage, multiplier float64) *Environment {
	return &Environment{Map: m, Multiplier: multiplier}
}

// NewConstant creates an environment of uniform radiance
func NewConstant(color core.Vec3, multiplier float64) *Environment {
	return New(NewConstantImage(color), multiplier)
}

// Radiance returns the light arriving from direction dir, which must be unit length
func (e *Environment) Radiance(dir core.Vec3) core.Vec3 {
	if e.Map == nil {
		return core.Vec3{}
	}
	return e.Map.Sample(Equirect(dir)).Multiply(e.Multiplier)
}

// Equirect maps a unit direction to (φ/2π, θ/π) with θ measured from +Y
// and φ = atan2(z, x) in [0, 2π).
func Equirect(dir core.Vec3) core.Vec2 {
	theta := math.Acos(max(-1, min(1, dir.Y)))
	phi := math.Atan2(dir.Z, dir.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

package integrator

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// PointLight is an isotropic point source with inverse-square falloff
type PointLight struct {
	Position  core.Vec3 `json:"position"`
	Color     core.Vec3 `json:"color"`
	Intensity float64   `json:"intensity"`
}

// NewPointLight creates a point light
func NewPointLight(position, color core.Vec3, intensity float64) *PointLight {
	return &PointLight{Position: position, Color: color, Intensity: intensity}
}

// Illuminate returns the unit direction from p to the light, the distance to it
// and the radiance arriving at p when unoccluded.
func (l *PointLight) Illuminate(p core.Vec3) (core.Vec3, float64, core.Vec3) {
	toLight := l.Position.Subtract(p)
	dist := toLight.Length()
	if dist == 0 {
		return core.Vec3{}, 0, core.Vec3{}
	}
	radiance := l.Color.Multiply(l.Intensity / (dist * dist))
	return toLight.Multiply(1 / dist), dist, radiance
}

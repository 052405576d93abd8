package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Params holds the scalar material description attached to scene geometry.
// Reflectivity blends the specular lobes against diffuse, Metalness blends
// metal against dielectric, Fresnel is the reflectance at normal incidence.
type Params struct {
	Name         string    `json:"name"`
	Color        core.Vec3 `json:"color"`
	Reflectivity float64   `json:"reflectivity"`
	Metalness    float64   `json:"metalness"`
	Fresnel      float64   `json:"fresnel"`
	Shininess    float64   `json:"shininess"`
	Emission     float64   `json:"emission"`
	Transparency float64   `json:"transparency"`
}

// NewDiffuseParams creates a purely diffuse material
func NewDiffuseParams(name string, color core.Vec3) *Params {
	return &Params{Name: name, Color: color}
}

// NewMetalParams creates a fully reflective metal
func NewMetalParams(name string, color core.Vec3, shininess, fresnel float64) *Params {
	return &Params{
		Name:         name,
		Color:        color,
		Reflectivity: 1,
		Metalness:    1,
		Fresnel:      fresnel,
		Shininess:    shininess,
	}
}

// NewPlasticParams creates a dielectric coating over a diffuse base
func NewPlasticParams(name string, color core.Vec3, shininess, fresnel float64) *Params {
	return &Params{
		Name:         name,
		Color:        color,
		Reflectivity: 1,
		Fresnel:      fresnel,
		Shininess:    shininess,
	}
}

// NewEmissiveParams creates a diffuse surface that emits strength*color
func NewEmissiveParams(name string, color core.Vec3, strength float64) *Params {
	return &Params{Name: name, Color: color, Emission: strength}
}

// Clamp limits the blend weights to [0,1] and the exponents to non-negative values
func (p *Params) Clamp() {
	p.Reflectivity = clamp01(p.Reflectivity)
	p.Metalness = clamp01(p.Metalness)
	p.Fresnel = clamp01(p.Fresnel)
	p.Transparency = clamp01(p.Transparency)
	p.Shininess = max(0, p.Shininess)
	p.Emission = max(0, p.Emission)
	p.Color = p.Color.Clamp(0, 1)
}

// Emitted returns the radiance the surface emits on its own
func (p *Params) Emitted() core.Vec3 {
	return p.Color.Multiply(p.Emission)
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

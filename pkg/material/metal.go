package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// BlinnPhongMetal reflects through the Blinn-Phong lobe tinted by Color and transmits nothing
type BlinnPhongMetal struct {
	Color     core.Vec3
	Shininess float64
	R0        float64
}

// NewBlinnPhongMetal creates a metal microfacet BRDF
func NewBlinnPhongMetal(color core.Vec3, shininess, r0 float64) *BlinnPhongMetal {
	return &BlinnPhongMetal{Color: color, Shininess: shininess, R0: r0}
}

// Evaluate returns the tinted reflection lobe
func (m *BlinnPhongMetal) Evaluate(wi, wo, n core.Vec3) core.Vec3 {
	return m.Color.Multiply(blinnPhongReflection(wi, wo, n, m.Shininess, m.R0))
}

// Sample draws from the reflection lobe. The refraction branch is still taken
// half of the time and always yields a zero sample.
func (m *BlinnPhongMetal) Sample(wo, n core.Vec3, sampler core.Sampler) (core.Vec3, core.Vec3, float64) {
	wh, reflect, ok := sampleBlinnPhongLobe(wo, n, m.Shininess, sampler)
	if !ok || !reflect {
		return core.Vec3{}, core.Vec3{}, 0
	}

	wi, pdf := reflectAboutHalfVector(wo, wh, n, m.Shininess)
	return wi, m.Evaluate(wi, wo, n), pdf
}

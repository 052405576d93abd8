package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// BRDF is a reflectance model that can be evaluated for a pair of directions
// and sampled for an incoming direction. All directions point away from the
// surface and n is the unit shading normal.
type BRDF interface {
	// Evaluate returns the reflectance for light arriving along wi and leaving along wo.
	Evaluate(wi, wo, n core.Vec3) core.Vec3

	// Sample draws an incoming direction wi for outgoing direction wo. It returns
	// the reflectance for the pair and the solid angle density of the draw.
	// A zero pdf means the sample must be discarded.
	Sample(wo, n core.Vec3, sampler core.Sampler) (wi, weight core.Vec3, pdf float64)
}

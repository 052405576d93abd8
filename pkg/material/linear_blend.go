package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// LinearBlend mixes two BRDFs: W·A + (1-W)·B
type LinearBlend struct {
	W    float64
	A, B BRDF
}

// NewLinearBlend creates a new blend of a and b
func NewLinearBlend(w float64, a, b BRDF) *LinearBlend {
	return &LinearBlend{W: w, A: a, B: b}
}

// Evaluate returns the weighted sum of both BRDFs
func (l *LinearBlend) Evaluate(wi, wo, n core.Vec3) core.Vec3 {
	return l.A.Evaluate(wi, wo, n).Multiply(l.W).
		Add(l.B.Evaluate(wi, wo, n).Multiply(1 - l.W))
}

// Sample delegates to A with probability W, otherwise to B. The chosen
// branch's pdf is returned as is, without dividing by the selection probability.
func (l *LinearBlend) Sample(wo, n core.Vec3, sampler core.Sampler) (core.Vec3, core.Vec3, float64) {
	if sampler.Get1D() < l.W {
		return l.A.Sample(wo, n, sampler)
	}
	return l.B.Sample(wo, n, sampler)
}

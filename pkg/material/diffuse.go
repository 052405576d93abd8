package material

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Diffuse is a Lambertian reflector
type Diffuse struct {
	Albedo core.Vec3
}

// NewDiffuse creates a new diffuse BRDF
func NewDiffuse(albedo core.Vec3) *Diffuse {
	return &Diffuse{Albedo: albedo}
}

// Evaluate returns albedo/π when wi is above the surface and on the same side as wo
func (d *Diffuse) Evaluate(wi, wo, n core.Vec3) core.Vec3 {
	if wi.Dot(n) <= 0 {
		return core.Vec3{}
	}
	if !core.SameHemisphere(wi, wo, n) {
		return core.Vec3{}
	}
	return d.Albedo.Multiply(1.0 / math.Pi)
}

// Sample draws a cosine-weighted direction about n
func (d *Diffuse) Sample(wo, n core.Vec3, sampler core.Sampler) (core.Vec3, core.Vec3, float64) {
	frame := core.NewFrame(n)
	wi := frame.ToWorld(core.CosineSampleHemisphere(sampler.Get2D())).Normalize()

	pdf := 0.0
	if cosTheta := wi.Dot(n); cosTheta > 0 {
		pdf = cosTheta / math.Pi
	}
	return wi, d.Evaluate(wi, wo, n), pdf
}

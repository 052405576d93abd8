package material

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// BlinnPhong is a dielectric microfacet BRDF. Light not reflected by the
// coating (1-F) is handed to an optional refraction layer underneath.
type BlinnPhong struct {
	Shininess  float64
	R0         float64 // Fresnel reflectance at normal incidence
	Refraction BRDF    // nil means nothing is transmitted
}

// NewBlinnPhong creates a dielectric microfacet BRDF over the given layer
func NewBlinnPhong(shininess, r0 float64, refraction BRDF) *BlinnPhong {
	return &BlinnPhong{Shininess: shininess, R0: r0, Refraction: refraction}
}

// Evaluate returns the reflected lobe plus the Fresnel-attenuated layer
func (b *BlinnPhong) Evaluate(wi, wo, n core.Vec3) core.Vec3 {
	reflection := core.Splat(blinnPhongReflection(wi, wo, n, b.Shininess, b.R0))
	return reflection.Add(b.refraction(wi, wo, n))
}

func (b *BlinnPhong) refraction(wi, wo, n core.Vec3) core.Vec3 {
	if b.Refraction == nil {
		return core.Vec3{}
	}
	wh := wi.Add(wo).Normalize()
	f := schlick(b.R0, math.Abs(wh.Dot(wi)))
	return b.Refraction.Evaluate(wi, wo, n).Multiply(1 - f)
}

// Sample picks the reflection lobe or the refraction layer with equal probability
func (b *BlinnPhong) Sample(wo, n core.Vec3, sampler core.Sampler) (core.Vec3, core.Vec3, float64) {
	wh, reflect, ok := sampleBlinnPhongLobe(wo, n, b.Shininess, sampler)
	if !ok {
		return core.Vec3{}, core.Vec3{}, 0
	}

	if reflect {
		wi, pdf := reflectAboutHalfVector(wo, wh, n, b.Shininess)
		return wi, core.Splat(blinnPhongReflection(wi, wo, n, b.Shininess, b.R0)), pdf
	}

	if b.Refraction == nil {
		return core.Vec3{}, core.Vec3{}, 0
	}
	wi, weight, pdf := b.Refraction.Sample(wo, n, sampler)
	f := schlick(b.R0, math.Abs(wh.Dot(wi)))
	return wi, weight.Multiply(1 - f), pdf * 0.5
}

// schlick approximates the Fresnel reflectance for the cosine between the half vector and wi
func schlick(r0, cosTheta float64) float64 {
	return r0 + (1-r0)*math.Pow(1-cosTheta, 5)
}

// blinnPhongReflection is the Torrance-Sparrow reflection term F·D·G / (4 (n·wo)(n·wi))
// with a normalized Blinn-Phong distribution. Zero when either direction is below the surface.
func blinnPhongReflection(wi, wo, n core.Vec3, shininess, r0 float64) float64 {
	nwi := n.Dot(wi)
	if nwi <= 0 {
		return 0
	}
	nwo := n.Dot(wo)
	if nwo <= 0 {
		return 0
	}

	wh := wi.Add(wo).Normalize()
	nwh := n.Dot(wh)
	wowh := wo.Dot(wh)

	f := schlick(r0, math.Abs(wh.Dot(wi)))
	d := (shininess + 2) / (2 * math.Pi) * math.Pow(nwh, shininess)
	g := min(1, 2*nwh*nwo/wowh, 2*nwh*nwi/wowh)

	return f * d * g / (4 * nwo * nwi)
}

// sampleBlinnPhongLobe draws a half vector from the Blinn-Phong distribution
// around n and chooses the reflection branch with probability one half.
// ok is false when wo is below the surface.
func sampleBlinnPhongLobe(wo, n core.Vec3, shininess float64, sampler core.Sampler) (wh core.Vec3, reflect bool, ok bool) {
	u := sampler.Get2D()
	phi := 2 * math.Pi * u.X
	cosTheta := math.Pow(u.Y, 1/(shininess+1))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))

	frame := core.NewFrame(n)
	wh = frame.ToWorld(core.NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)).Normalize()

	if wo.Dot(n) <= 0 {
		return wh, false, false
	}
	return wh, sampler.Get1D() < 0.5, true
}

// reflectAboutHalfVector mirrors wo about wh and converts the half vector
// density to a density over wi. The returned pdf includes the one-half
// branch probability.
func reflectAboutHalfVector(wo, wh, n core.Vec3, shininess float64) (core.Vec3, float64) {
	wowh := wh.Dot(wo)
	wi := wo.Negate().Add(wh.Multiply(2 * wowh)).Normalize()

	pdfWh := (shininess + 1) * math.Pow(n.Dot(wh), shininess) / (2 * math.Pi)
	pdfWi := pdfWh / (4 * wo.Dot(wh))
	return wi, pdfWi * 0.5
}

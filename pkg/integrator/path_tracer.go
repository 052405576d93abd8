package integrator

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/environment"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Oracle answers ray queries against the scene. Implementations must be safe
// for concurrent queries on distinct rays.
type Oracle interface {
	Intersect(ray *core.Ray) bool
	Occluded(ray *core.Ray) bool
	Resolve(ray core.Ray) geometry.Intersection
}

// Config controls path construction
type Config struct {
	MaxBounces int

	// RayOffset pushes shadow and continuation rays off the surface along the
	// shading normal so they do not hit the surface they start on. It bounds how
	// far shading and geometric normals may diverge before artifacts appear.
	RayOffset float64
}

// DefaultRayOffset is the offset used when none is configured
const DefaultRayOffset = 1e-4

// Samples with a pdf below this end the path
const pdfEpsilon = 1e-4

// PathTracer estimates radiance along camera rays with unidirectional path tracing,
// sampling the point light directly at every vertex.
type PathTracer struct {
	Oracle      Oracle
	Light       *PointLight
	Environment *environment.Environment
	Config      Config
}

// NewPathTracer creates a path tracer over a scene
func NewPathTracer(oracle Oracle, light *PointLight, env *environment.Environment, config Config) *PathTracer {
	if config.RayOffset <= 0 {
		config.RayOffset = DefaultRayOffset
	}
	return &PathTracer{
		Oracle:      oracle,
		Light:       light,
		Environment: env,
		Config:      config,
	}
}

// Li returns the radiance arriving along a primary ray that has already been
// intersected with the scene.
func (pt *PathTracer) Li(primary core.Ray, sampler core.Sampler) core.Vec3 {
	L, _ := pt.Trace(primary, sampler)
	return L
}

// Trace is Li that also reports the number of rays it cast
func (pt *PathTracer) Trace(primary core.Ray, sampler core.Sampler) (core.Vec3, int) {
	L := core.Vec3{}
	beta := core.Splat(1)
	current := primary
	rays := 0

	var tree material.Tree
	for bounce := 0; bounce < pt.Config.MaxBounces; bounce++ {
		hit := pt.Oracle.Resolve(current)
		brdf := tree.Reset(hit.Material)
		n := hit.ShadingNormal
		origin := hit.Position.Add(n.Multiply(pt.Config.RayOffset))

		// Direct light
		if pt.Light != nil {
			wi, dist, radiance := pt.Light.Illuminate(hit.Position)
			if dist > 0 {
				shadow := core.NewRay(origin, wi)
				shadow.TFar = dist
				rays++
				if !pt.Oracle.Occluded(&shadow) {
					f := brdf.Evaluate(wi, hit.Wo, n)
					L = L.Add(beta.MultiplyVec(f).MultiplyVec(radiance).Multiply(max(0, wi.Dot(n))))
				}
			}
		}

		// Emission
		L = L.Add(beta.MultiplyVec(hit.Material.Emitted()))

		// Indirect
		wi, f, pdf := brdf.Sample(hit.Wo, n, sampler)
		if pdf < pdfEpsilon {
			return L, rays
		}
		beta = beta.MultiplyVec(f).Multiply(math.Abs(wi.Dot(n)) / pdf)
		if beta.IsZero() {
			return L, rays
		}

		current = core.NewRay(origin, wi)
		rays++
		if !pt.Oracle.Intersect(&current) {
			return L.Add(beta.MultiplyVec(pt.envRadiance(wi))), rays
		}
	}

	return L, rays
}

// Background returns the radiance seen along a ray that hit nothing
func (pt *PathTracer) Background(dir core.Vec3) core.Vec3 {
	return pt.envRadiance(dir)
}

func (pt *PathTracer) envRadiance(dir core.Vec3) core.Vec3 {
	if pt.Environment == nil {
		return core.Vec3{}
	}
	return pt.Environment.Radiance(dir)
}

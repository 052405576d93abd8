package geometry

import (
	"fmt"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/log"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

var logger = log.New("geometry")

// Intersection is a resolved hit
type Intersection struct {
	Position       core.Vec3
	GeometryNormal core.Vec3 // Unit face normal, facing the incoming ray
	ShadingNormal  core.Vec3 // Unit, interpolated from the vertex normals
	Wo             core.Vec3 // Unit direction back toward the ray origin
	Material       *material.Params
}

// Accelerator registers meshes and answers closest-hit and any-hit queries
// against them. Meshes are added and Build is called once before rendering;
// queries are safe for concurrent use afterwards.
type Accelerator struct {
	meshes []*TriangleMesh
	bvh    *BVH
}

// NewAccelerator creates an empty accelerator
func NewAccelerator() *Accelerator {
	return &Accelerator{}
}

// AddMesh registers a mesh and returns its geometry ID. Build must be called again afterwards.
func (a *Accelerator) AddMesh(mesh *TriangleMesh) int {
	a.meshes = append(a.meshes, mesh)
	a.bvh = nil
	return len(a.meshes) - 1
}

// Build constructs the acceleration structure over every registered mesh
func (a *Accelerator) Build() {
	start := time.Now()
	a.bvh = NewBVH(a.meshes)

	stats := a.bvh.Stats()
	logger.Infof("built BVH over %d triangles in %d meshes (%d nodes, depth %d) in %v",
		stats.TotalTriangles, len(a.meshes), stats.TotalNodes, stats.MaxDepth, time.Since(start))
}

// Intersect finds the closest hit and fills the ray's hit fields
func (a *Accelerator) Intersect(ray *core.Ray) bool {
	return a.built().Intersect(ray)
}

// Occluded reports whether anything blocks the ray within [TNear, TFar]
func (a *Accelerator) Occluded(ray *core.Ray) bool {
	return a.built().Occluded(ray)
}

func (a *Accelerator) built() *BVH {
	if a.bvh == nil {
		panic("geometry: accelerator queried before Build")
	}
	return a.bvh
}

// Resolve materializes the hit recorded on ray. Panics if the geometry ID
// does not belong to a registered mesh.
func (a *Accelerator) Resolve(ray core.Ray) Intersection {
	if ray.GeomID < 0 || ray.GeomID >= len(a.meshes) {
		panic(fmt.Sprintf("geometry: no mesh registered for geometry ID %d", ray.GeomID))
	}
	mesh := a.meshes[ray.GeomID]
	if ray.PrimID < 0 || ray.PrimID >= mesh.NumTriangles() {
		panic(fmt.Sprintf("geometry: mesh %q has no primitive %d", mesh.Name, ray.PrimID))
	}

	n0, n1, n2 := mesh.TriangleNormals(ray.PrimID)
	w := 1 - ray.U - ray.V
	shading := n0.Multiply(w).Add(n1.Multiply(ray.U)).Add(n2.Multiply(ray.V)).Normalize()

	geometric := ray.GeomNormal.Normalize()
	if geometric.Dot(ray.Direction) > 0 {
		geometric = geometric.Negate()
	}

	return Intersection{
		Position:       ray.At(ray.TFar),
		GeometryNormal: geometric,
		ShadingNormal:  shading,
		Wo:             ray.Direction.Negate().Normalize(),
		Material:       mesh.Material,
	}
}

// Meshes returns the registered meshes indexed by geometry ID
func (a *Accelerator) Meshes() []*TriangleMesh {
	return a.meshes
}

// Bounds returns the bounding box of every registered mesh
func (a *Accelerator) Bounds() core.AABB {
	if len(a.meshes) == 0 {
		return core.AABB{}
	}
	box := core.EmptyAABB()
	for _, m := range a.meshes {
		box = box.Union(m.Bounds())
	}
	return box
}

// NumTriangles returns the total triangle count
func (a *Accelerator) NumTriangles() int {
	n := 0
	for _, m := range a.meshes {
		n += m.NumTriangles()
	}
	return n
}

// Stats returns BVH statistics, zero before Build
func (a *Accelerator) Stats() BVHStats {
	if a.bvh == nil {
		return BVHStats{}
	}
	return a.bvh.Stats()
}

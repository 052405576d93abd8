package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func TestAccelerator_IntersectAndResolve(t *testing.T) {
	red := material.NewDiffuseParams("red", core.NewVec3(1, 0, 0))
	blue := material.NewDiffuseParams("blue", core.NewVec3(0, 0, 1))

	// Single triangle in z=0 with distinct vertex normals
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
	}
	normals := []core.Vec3{
		core.NewVec3(0, 0, 1),
		core.NewVec3(1, 0, 1).Normalize(),
		core.NewVec3(0, 1, 1).Normalize(),
	}
	acc := NewAccelerator()
	if id := acc.AddMesh(NewTriangleMesh("tri", vertices, normals, []int{0, 1, 2}, red)); id != 0 {
		t.Errorf("Expected first geometry ID 0, got %d", id)
	}
	if id := acc.AddMesh(NewQuadMesh("far", core.NewVec3(-5, -5, 3), core.NewVec3(10, 0, 0), core.NewVec3(0, 10, 0), blue)); id != 1 {
		t.Errorf("Expected second geometry ID 1, got %d", id)
	}
	acc.Build()

	ray := core.NewRay(core.NewVec3(0.25, 0.5, -2), core.NewVec3(0, 0, 1))
	if !acc.Intersect(&ray) {
		t.Fatal("Expected hit")
	}
	if ray.GeomID != 0 || ray.PrimID != 0 {
		t.Fatalf("Expected the closest triangle, got geom %d prim %d", ray.GeomID, ray.PrimID)
	}

	hit := acc.Resolve(ray)
	if hit.Material != red {
		t.Errorf("Expected the red material, got %v", hit.Material.Name)
	}
	if hit.Position.Subtract(core.NewVec3(0.25, 0.5, 0)).Length() > 1e-12 {
		t.Errorf("Unexpected position %v", hit.Position)
	}
	if hit.Wo != core.NewVec3(0, 0, -1) {
		t.Errorf("Expected wo toward the origin, got %v", hit.Wo)
	}
	// Face normal is +Z but the ray arrives from -Z
	if hit.GeometryNormal != core.NewVec3(0, 0, -1) {
		t.Errorf("Expected geometric normal facing the ray, got %v", hit.GeometryNormal)
	}

	// w=0.25, u=0.25, v=0.5
	expected := normals[0].Multiply(0.25).Add(normals[1].Multiply(0.25)).Add(normals[2].Multiply(0.5)).Normalize()
	if hit.ShadingNormal.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected interpolated normal %v, got %v", expected, hit.ShadingNormal)
	}
	if math.Abs(hit.ShadingNormal.Length()-1) > 1e-12 {
		t.Errorf("Shading normal not unit length: %v", hit.ShadingNormal)
	}

	// Outside the triangle the ray reaches the far quad
	ray = core.NewRay(core.NewVec3(0.9, 0.9, -2), core.NewVec3(0, 0, 1))
	if !acc.Intersect(&ray) || ray.GeomID != 1 {
		t.Fatalf("Expected the far quad, got geom %d", ray.GeomID)
	}
	if hit := acc.Resolve(ray); hit.Material != blue || math.Abs(ray.TFar-5) > 1e-12 {
		t.Errorf("Expected blue at t=5, got %s at t=%f", hit.Material.Name, ray.TFar)
	}
}

func TestAccelerator_Occluded(t *testing.T) {
	acc := NewAccelerator()
	acc.AddMesh(NewQuadMesh("wall", core.NewVec3(-1, -1, 5), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), nil))
	acc.Build()

	tests := []struct {
		name     string
		tFar     float64
		occluded bool
	}{
		{"Segment ends before the wall", 4.9, false},
		{"Segment crosses the wall", 5.1, true},
		{"Unbounded", math.MaxFloat64, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
			ray.TFar = tt.tFar
			if got := acc.Occluded(&ray); got != tt.occluded {
				t.Errorf("Expected occluded=%v, got %v", tt.occluded, got)
			}
		})
	}
}

func TestAccelerator_ResolveUnknownGeometryPanics(t *testing.T) {
	acc := NewAccelerator()
	acc.AddMesh(NewQuadMesh("q", core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), nil))
	acc.Build()

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for an unregistered geometry ID")
		}
	}()
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	ray.GeomID = 7
	ray.PrimID = 0
	acc.Resolve(ray)
}

func TestAccelerator_QueryBeforeBuildPanics(t *testing.T) {
	acc := NewAccelerator()
	acc.AddMesh(NewQuadMesh("q", core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), nil))

	defer func() {
		if recover() == nil {
			t.Error("Expected panic when querying before Build")
		}
	}()
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	acc.Intersect(&ray)
}

func TestAccelerator_Bounds(t *testing.T) {
	acc := NewAccelerator()
	acc.AddMesh(NewBoxMesh("a", core.NewVec3(0, 0, 0), core.Splat(1), nil))
	acc.AddMesh(NewBoxMesh("b", core.NewVec3(5, 0, 0), core.Splat(1), nil))

	b := acc.Bounds()
	if b.Min != core.NewVec3(-1, -1, -1) || b.Max != core.NewVec3(6, 1, 1) {
		t.Errorf("Unexpected bounds %v", b)
	}
	if acc.NumTriangles() != 24 {
		t.Errorf("Expected 24 triangles, got %d", acc.NumTriangles())
	}
}

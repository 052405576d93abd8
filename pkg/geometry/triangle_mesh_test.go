package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func unitQuad() ([]core.Vec3, []int) {
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0), // 0
		core.NewVec3(1, 0, 0), // 1
		core.NewVec3(1, 1, 0), // 2
		core.NewVec3(0, 1, 0), // 3
	}
	faces := []int{
		0, 1, 2, // first triangle
		0, 2, 3, // second triangle
	}
	return vertices, faces
}

func TestTriangleMesh_Creation(t *testing.T) {
	vertices, faces := unitQuad()
	mesh := NewTriangleMesh("quad", vertices, nil, faces, nil)

	if mesh.NumTriangles() != 2 {
		t.Errorf("Expected 2 triangles, got %d", mesh.NumTriangles())
	}
	if mesh.Material == nil {
		t.Error("Expected a default material")
	}

	bbox := mesh.Bounds()
	if bbox.Min != core.NewVec3(0, 0, 0) || bbox.Max != core.NewVec3(1, 1, 0) {
		t.Errorf("Unexpected bounds %v", bbox)
	}

	// Computed normals follow the winding
	for i, n := range mesh.Normals {
		if n.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-12 {
			t.Errorf("Normal %d: expected +Z, got %v", i, n)
		}
	}
}

func TestTriangleMesh_ErrorHandling(t *testing.T) {
	vertices, _ := unitQuad()

	tests := []struct {
		name    string
		normals []core.Vec3
		faces   []int
	}{
		{"Indices not a multiple of 3", nil, []int{0, 1}},
		{"Index out of bounds", nil, []int{0, 1, 4}},
		{"Negative index", nil, []int{0, -1, 2}},
		{"Normal count mismatch", []core.Vec3{core.NewVec3(0, 0, 1)}, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Expected panic")
				}
			}()
			NewTriangleMesh("bad", vertices, tt.normals, tt.faces, nil)
		})
	}
}

func TestComputeVertexNormals_AreaWeighted(t *testing.T) {
	// Two triangles sharing vertex 0: a large one facing +Z and a small one facing +X
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(4, 0, 0),
		core.NewVec3(0, 4, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, 0, 1),
	}
	indices := []int{0, 1, 2, 0, 3, 4}

	normals := ComputeVertexNormals(vertices, indices)
	n := normals[0]
	if n.Z <= n.X {
		t.Errorf("Expected the larger face to dominate, got %v", n)
	}
	if math.Abs(n.Length()-1) > 1e-12 {
		t.Errorf("Expected unit normal, got length %f", n.Length())
	}

	// The shared vertex normal is the normalized sum (0,0,16) + (1,0,0)
	expected := core.NewVec3(1, 0, 16).Normalize()
	if n.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, n)
	}
}

func TestTriangleMesh_Transformed(t *testing.T) {
	vertices, faces := unitQuad()
	params := material.NewDiffuseParams("red", core.NewVec3(1, 0, 0))
	mesh := NewTriangleMesh("quad", vertices, nil, faces, params)

	tr := Transform{
		Translation: core.NewVec3(0, 10, 0),
		Rotation:    core.NewVec3(-90, 0, 0),
		Scale:       core.NewVec3(2, 2, 2),
	}
	moved := mesh.Transformed(tr.Matrix())

	// Rotating -90° about X takes +Y to -Z and +Z to +Y
	expected := []core.Vec3{
		core.NewVec3(0, 10, 0),
		core.NewVec3(2, 10, 0),
		core.NewVec3(2, 10, -2),
		core.NewVec3(0, 10, -2),
	}
	for i, v := range moved.Vertices {
		if v.Subtract(expected[i]).Length() > 1e-9 {
			t.Errorf("Vertex %d: expected %v, got %v", i, expected[i], v)
		}
	}
	for i, n := range moved.Normals {
		if n.Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-9 {
			t.Errorf("Normal %d: expected +Y, got %v", i, n)
		}
	}

	if moved.Material != params {
		t.Error("Transformed mesh should share the material")
	}
	if mesh.Vertices[1] != core.NewVec3(1, 0, 0) {
		t.Error("Original mesh was modified")
	}
	if b := moved.Bounds(); b.Min.Subtract(core.NewVec3(0, 10, -2)).Length() > 1e-9 {
		t.Errorf("Unexpected bounds %v", b)
	}
}

func TestTransform_NonUniformScaleNormals(t *testing.T) {
	// A 45° slope squashed along X must keep its normal perpendicular to the surface
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 0, 1),
		core.NewVec3(1, 1, 0),
	}
	mesh := NewTriangleMesh("slope", vertices, nil, []int{0, 1, 2}, nil)
	tr := IdentityTransform()
	tr.Scale = core.NewVec3(0.5, 1, 1)
	moved := mesh.Transformed(tr.Matrix())

	v0, v1, v2 := moved.Triangle(0)
	face := FaceNormal(v0, v1, v2).Normalize()
	if math.Abs(math.Abs(face.Dot(moved.Normals[0]))-1) > 1e-9 {
		t.Errorf("Normal %v not aligned with face normal %v", moved.Normals[0], face)
	}
}

func TestShapeMeshes(t *testing.T) {
	params := material.NewDiffuseParams("grey", core.Splat(0.5))

	quad := NewQuadMesh("ground", core.NewVec3(-1, 0, 1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, -2), params)
	if quad.NumTriangles() != 2 {
		t.Errorf("Quad: expected 2 triangles, got %d", quad.NumTriangles())
	}
	if quad.Normals[0] != core.NewVec3(0, 1, 0) {
		t.Errorf("Quad: expected +Y normal, got %v", quad.Normals[0])
	}

	box := NewBoxMesh("box", core.NewVec3(0, 1, 0), core.NewVec3(1, 1, 1), params)
	if box.NumTriangles() != 12 {
		t.Errorf("Box: expected 12 triangles, got %d", box.NumTriangles())
	}
	for i := 0; i < box.NumTriangles(); i++ {
		v0, v1, v2 := box.Triangle(i)
		n := FaceNormal(v0, v1, v2)
		outward := v0.Add(v1).Add(v2).Multiply(1.0 / 3).Subtract(core.NewVec3(0, 1, 0))
		if n.Dot(outward) <= 0 {
			t.Errorf("Box triangle %d faces inward", i)
		}
	}

	sphere := NewSphereMesh("ball", core.NewVec3(0, 5, 0), 2, 16, 8, params)
	if sphere.NumTriangles() != 16*8*2-2*16 {
		t.Errorf("Sphere: expected %d triangles, got %d", 16*8*2-2*16, sphere.NumTriangles())
	}
	for i, v := range sphere.Vertices {
		if math.Abs(v.Subtract(core.NewVec3(0, 5, 0)).Length()-2) > 1e-9 {
			t.Fatalf("Sphere vertex %d not on the surface: %v", i, v)
		}
	}
	for i := 0; i < sphere.NumTriangles(); i++ {
		v0, v1, v2 := sphere.Triangle(i)
		n := FaceNormal(v0, v1, v2)
		if n.Length() < 1e-12 {
			t.Fatalf("Sphere triangle %d is degenerate", i)
		}
		outward := v0.Add(v1).Add(v2).Multiply(1.0 / 3).Subtract(core.NewVec3(0, 5, 0))
		if n.Dot(outward) <= 0 {
			t.Fatalf("Sphere triangle %d faces inward", i)
		}
	}
}

package geometry

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// TriangleMesh is an indexed triangle list with one shading normal per vertex
// and a single material shared by every triangle.
type TriangleMesh struct {
	Name     string
	Vertices []core.Vec3
	Normals  []core.Vec3 // One per vertex
	Indices  []int       // Each group of 3 indices forms a triangle
	Material *material.Params
	bounds   core.AABB
}

// NewTriangleMesh creates a mesh from vertices and triangle indices.
// When normals is nil smooth vertex normals are computed from the faces.
// Panics if indices are malformed, since that means scene setup is broken.
func NewTriangleMesh(name string, vertices, normals []core.Vec3, indices []int, mat *material.Params) *TriangleMesh {
	if len(indices)%3 != 0 {
		panic("Face indices must be a multiple of 3")
	}
	for _, i := range indices {
		if i < 0 || i >= len(vertices) {
			panic("Face index out of bounds")
		}
	}
	if normals != nil && len(normals) != len(vertices) {
		panic("Number of normals must match number of vertices")
	}
	if mat == nil {
		mat = material.NewDiffuseParams("default", core.Splat(0.8))
	}

	mesh := &TriangleMesh{
		Name:     name,
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		Material: mat,
	}
	if mesh.Normals == nil {
		mesh.Normals = ComputeVertexNormals(vertices, indices)
	}
	mesh.bounds = core.NewAABBFromPoints(vertices...)
	return mesh
}

// ComputeVertexNormals averages the area-weighted face normals around each vertex
func ComputeVertexNormals(vertices []core.Vec3, indices []int) []core.Vec3 {
	normals := make([]core.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		n := FaceNormal(vertices[i0], vertices[i1], vertices[i2])
		normals[i0] = normals[i0].Add(n)
		normals[i1] = normals[i1].Add(n)
		normals[i2] = normals[i2].Add(n)
	}
	for i, n := range normals {
		if n.IsZero() {
			// Unreferenced or only on degenerate faces
			normals[i] = core.NewVec3(0, 1, 0)
			continue
		}
		normals[i] = n.Normalize()
	}
	return normals
}

// NumTriangles returns the number of triangles in the mesh
func (m *TriangleMesh) NumTriangles() int {
	return len(m.Indices) / 3
}

// Triangle returns the vertices of triangle i
func (m *TriangleMesh) Triangle(i int) (core.Vec3, core.Vec3, core.Vec3) {
	return m.Vertices[m.Indices[3*i]], m.Vertices[m.Indices[3*i+1]], m.Vertices[m.Indices[3*i+2]]
}

// TriangleNormals returns the vertex normals of triangle i
func (m *TriangleMesh) TriangleNormals(i int) (core.Vec3, core.Vec3, core.Vec3) {
	return m.Normals[m.Indices[3*i]], m.Normals[m.Indices[3*i+1]], m.Normals[m.Indices[3*i+2]]
}

// TriangleBounds returns the bounding box of triangle i
func (m *TriangleMesh) TriangleBounds(i int) core.AABB {
	v0, v1, v2 := m.Triangle(i)
	return core.NewAABBFromPoints(v0, v1, v2)
}

// Bounds returns the bounding box of the whole mesh
func (m *TriangleMesh) Bounds() core.AABB {
	return m.bounds
}

// Transformed returns a copy of the mesh with positions transformed by matrix
// and normals by its inverse transpose. Indices and material are shared.
func (m *TriangleMesh) Transformed(matrix mgl64.Mat4) *TriangleMesh {
	nm := NormalMatrix(matrix)
	vertices := make([]core.Vec3, len(m.Vertices))
	normals := make([]core.Vec3, len(m.Normals))
	for i, v := range m.Vertices {
		vertices[i] = TransformPoint(matrix, v)
	}
	for i, n := range m.Normals {
		normals[i] = TransformNormal(nm, n)
	}

	return &TriangleMesh{
		Name:     m.Name,
		Vertices: vertices,
		Normals:  normals,
		Indices:  m.Indices,
		Material: m.Material,
		bounds:   core.NewAABBFromPoints(vertices...),
	}
}

package loaders

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/log"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

var logger = log.New("loaders")

// MeshData is an indexed triangle list as read from a model file
type MeshData struct {
	Name     string
	Vertices []core.Vec3
	Normals  []core.Vec3 // Empty when the file has no normals for every vertex
	Indices  []int       // 3 per triangle
	Material string      // Material name, empty for the default material
}

// NumTriangles returns the number of triangles in the mesh
func (m *MeshData) NumTriangles() int {
	return len(m.Indices) / 3
}

// TriangleMesh converts the data into a renderable mesh. Missing normals are
// computed from the faces.
func (m *MeshData) TriangleMesh(mat *material.Params) *geometry.TriangleMesh {
	normals := m.Normals
	if len(normals) != len(m.Vertices) {
		normals = nil
	}
	return geometry.NewTriangleMesh(m.Name, m.Vertices, normals, m.Indices, mat)
}

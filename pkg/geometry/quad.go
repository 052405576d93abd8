package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// NewQuadMesh creates a flat two-triangle mesh spanning corner, corner+u, corner+u+v, corner+v.
// The normal is u×v.
func NewQuadMesh(name string, corner, u, v core.Vec3, mat *material.Params) *TriangleMesh {
	var b meshBuilder
	b.addQuad(corner, u, v)
	return NewTriangleMesh(name, b.vertices, b.normals, b.indices, mat)
}

// meshBuilder accumulates flat-shaded faces
type meshBuilder struct {
	vertices []core.Vec3
	normals  []core.Vec3
	indices  []int
}

func (b *meshBuilder) addQuad(corner, u, v core.Vec3) {
	normal := u.Cross(v).Normalize()
	base := len(b.vertices)
	b.vertices = append(b.vertices, corner, corner.Add(u), corner.Add(u).Add(v), corner.Add(v))
	b.normals = append(b.normals, normal, normal, normal, normal)
	b.indices = append(b.indices, base, base+1, base+2, base, base+2, base+3)
}

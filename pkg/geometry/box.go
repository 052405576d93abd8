package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// NewBoxMesh creates an axis-aligned box with flat outward-facing sides.
// halfSize holds the half extents, so (1,1,1) is a 2x2x2 box.
func NewBoxMesh(name string, center, halfSize core.Vec3, mat *material.Params) *TriangleMesh {
	// Corner and edges of each side of the unit box [-1,1]³, with u×v pointing outward
	faces := [6][3]core.Vec3{
		{core.NewVec3(1, -1, 1), core.NewVec3(0, 0, -2), core.NewVec3(0, 2, 0)},  // +X
		{core.NewVec3(-1, -1, -1), core.NewVec3(0, 0, 2), core.NewVec3(0, 2, 0)}, // -X
		{core.NewVec3(-1, 1, 1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, -2)},  // +Y
		{core.NewVec3(-1, -1, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2)}, // -Y
		{core.NewVec3(-1, -1, 1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)},  // +Z
		{core.NewVec3(1, -1, -1), core.NewVec3(-2, 0, 0), core.NewVec3(0, 2, 0)}, // -Z
	}

	var b meshBuilder
	for _, f := range faces {
		corner := f[0].MultiplyVec(halfSize).Add(center)
		b.addQuad(corner, f[1].MultiplyVec(halfSize), f[2].MultiplyVec(halfSize))
	}
	return NewTriangleMesh(name, b.vertices, b.normals, b.indices, mat)
}

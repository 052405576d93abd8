package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// NewSphereMesh tessellates a sphere into rings×segments quads with smooth normals.
// Triangles that would collapse at the poles are left out.
func NewSphereMesh(name string, center core.Vec3, radius float64, segments, rings int, mat *material.Params) *TriangleMesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	vertices := make([]core.Vec3, 0, (rings+1)*(segments+1))
	normals := make([]core.Vec3, 0, (rings+1)*(segments+1))
	for r := 0; r <= rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			n := core.NewVec3(math.Sin(theta)*math.Cos(phi), math.Cos(theta), math.Sin(theta)*math.Sin(phi))
			vertices = append(vertices, center.Add(n.Multiply(radius)))
			normals = append(normals, n)
		}
	}

	var indices []int
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := r*(segments+1) + s
			b := a + segments + 1
			c := b + 1
			d := a + 1
			if r > 0 {
				indices = append(indices, a, d, b)
			}
			if r < rings-1 {
				indices = append(indices, d, c, b)
			}
		}
	}

	return NewTriangleMesh(name, vertices, normals, indices, mat)
}

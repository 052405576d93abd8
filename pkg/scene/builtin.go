package scene

import (
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// builtins maps scene names to functions building their meshes
var builtins = map[string]func() []*geometry.TriangleMesh{
	"default": defaultScene,
	"spheres": sphereGridScene,
	"furnace": furnaceScene,
}

// defaultScene is a landing pad with a hull stand-in, a metal sphere and a lamp
func defaultScene() []*geometry.TriangleMesh {
	pad := material.NewDiffuseParams("landing_pad", core.NewVec3(0.55, 0.55, 0.5))
	hull := material.NewPlasticParams("hull", core.NewVec3(0.7, 0.72, 0.75), 200, 0.05)
	hull.Metalness = 0.3
	gold := material.NewMetalParams("gold", core.NewVec3(1, 0.78, 0.34), 2000, 0.9)
	lamp := material.NewEmissiveParams("lamp", core.NewVec3(1, 0.85, 0.6), 4)

	return []*geometry.TriangleMesh{
		geometry.NewQuadMesh("ground",
			core.NewVec3(-60, 0, -60), core.NewVec3(0, 0, 120), core.NewVec3(120, 0, 0), pad),
		geometry.NewBoxMesh("pedestal", core.NewVec3(0, 1, 0), core.NewVec3(8, 1, 8), pad),
		geometry.NewSphereMesh("hull", core.NewVec3(0, 10, 0), 8, 48, 24, hull),
		geometry.NewSphereMesh("gold_sphere", core.NewVec3(16, 4, 8), 4, 32, 16, gold),
		geometry.NewSphereMesh("lamp", core.NewVec3(-14, 3, 10), 3, 24, 12, lamp),
	}
}

// sphereGridScene sweeps shininess along X and metalness along Z
func sphereGridScene() []*geometry.TriangleMesh {
	const (
		gridSize = 5
		spacing  = 6.0
		radius   = 2.2
	)

	floor := material.NewDiffuseParams("floor", core.Splat(0.5))
	meshes := []*geometry.TriangleMesh{
		geometry.NewQuadMesh("floor",
			core.NewVec3(-40, 0, -40), core.NewVec3(0, 0, 80), core.NewVec3(80, 0, 0), floor),
	}

	offset := spacing * float64(gridSize-1) / 2
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			t := float64(i) / float64(gridSize-1)
			s := float64(j) / float64(gridSize-1)

			name := fmt.Sprintf("sphere_%d_%d", i, j)
			mat := material.NewPlasticParams(name, core.NewVec3(0.8, 0.3+0.4*s, 0.2), 10+t*2000, 0.04)
			mat.Metalness = s

			center := core.NewVec3(float64(i)*spacing-offset, radius, float64(j)*spacing-offset)
			meshes = append(meshes, geometry.NewSphereMesh(name, center, radius, 32, 16, mat))
		}
	}
	return meshes
}

// furnaceScene is a white diffuse sphere alone under the environment. With a
// constant environment the sphere should vanish into the background.
func furnaceScene() []*geometry.TriangleMesh {
	white := material.NewDiffuseParams("white", core.Splat(1))
	return []*geometry.TriangleMesh{
		geometry.NewSphereMesh("sphere", core.NewVec3(0, 10, 0), 6, 64, 32, white),
	}
}

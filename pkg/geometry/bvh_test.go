package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func randomPoint(random *rand.Rand, scale float64) core.Vec3 {
	return core.NewVec3(
		(random.Float64()*2-1)*scale,
		(random.Float64()*2-1)*scale,
		(random.Float64()*2-1)*scale,
	)
}

// randomSoup creates meshes of small random triangles scattered through a cube
func randomSoup(random *rand.Rand, numMeshes, trianglesPerMesh int) []*TriangleMesh {
	meshes := make([]*TriangleMesh, numMeshes)
	for m := range meshes {
		var vertices []core.Vec3
		var indices []int
		for i := 0; i < trianglesPerMesh; i++ {
			center := randomPoint(random, 10)
			for k := 0; k < 3; k++ {
				indices = append(indices, len(vertices))
				vertices = append(vertices, center.Add(randomPoint(random, 1)))
			}
		}
		meshes[m] = NewTriangleMesh("soup", vertices, nil, indices, nil)
	}
	return meshes
}

// bruteForce returns the closest hit by testing every triangle
func bruteForce(meshes []*TriangleMesh, ray core.Ray) (float64, int, int, bool) {
	bestT := ray.TFar
	geomID, primID := -1, -1
	for g, mesh := range meshes {
		for p := 0; p < mesh.NumTriangles(); p++ {
			v0, v1, v2 := mesh.Triangle(p)
			if t, _, _, ok := IntersectTriangle(ray.Origin, ray.Direction, v0, v1, v2, ray.TNear, bestT); ok {
				bestT, geomID, primID = t, g, p
			}
		}
	}
	return bestT, geomID, primID, geomID >= 0
}

func TestBVH_MatchesBruteForce(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	meshes := randomSoup(random, 4, 100)
	bvh := NewBVH(meshes)

	hits := 0
	for i := 0; i < 2000; i++ {
		origin := randomPoint(random, 15)
		target := randomPoint(random, 8)
		ray := core.NewRay(origin, target.Subtract(origin).Normalize())

		expectedT, expectedGeom, expectedPrim, expectedHit := bruteForce(meshes, ray)
		hit := bvh.Intersect(&ray)

		if hit != expectedHit {
			t.Fatalf("Ray %d: BVH hit=%v, brute force hit=%v", i, hit, expectedHit)
		}
		if !hit {
			if ray.HasHit() {
				t.Fatalf("Ray %d: missed but hit fields were set", i)
			}
			continue
		}
		hits++
		if math.Abs(ray.TFar-expectedT) > 1e-9 {
			t.Fatalf("Ray %d: expected t=%f, got %f", i, expectedT, ray.TFar)
		}
		if ray.GeomID != expectedGeom || ray.PrimID != expectedPrim {
			t.Fatalf("Ray %d: expected (%d,%d), got (%d,%d)", i, expectedGeom, expectedPrim, ray.GeomID, ray.PrimID)
		}
	}

	if hits == 0 {
		t.Fatal("Test rays never hit anything")
	}
}

func TestBVH_OccludedMatchesIntersect(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	meshes := randomSoup(random, 2, 150)
	bvh := NewBVH(meshes)

	for i := 0; i < 1000; i++ {
		origin := randomPoint(random, 15)
		target := randomPoint(random, 8)
		dir := target.Subtract(origin)
		dist := dir.Length()

		// Segment limited to the target point
		shadow := core.NewRay(origin, dir.Normalize())
		shadow.TFar = dist
		before := shadow

		closest := shadow
		expected := bvh.Intersect(&closest)

		if got := bvh.Occluded(&shadow); got != expected {
			t.Fatalf("Ray %d: Occluded=%v, Intersect=%v", i, got, expected)
		}
		if shadow != before {
			t.Fatalf("Ray %d: Occluded modified the ray", i)
		}
	}
}

func TestBVH_Empty(t *testing.T) {
	bvh := NewBVH(nil)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	if bvh.Intersect(&ray) || bvh.Occluded(&ray) {
		t.Error("Empty BVH should never report a hit")
	}
	if bvh.Stats() != (BVHStats{}) {
		t.Errorf("Expected empty stats, got %+v", bvh.Stats())
	}
}

func TestBVH_Stats(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	meshes := randomSoup(random, 3, 50)
	stats := NewBVH(meshes).Stats()

	if stats.TotalTriangles != 150 {
		t.Errorf("Expected every triangle in exactly one leaf, got %d", stats.TotalTriangles)
	}
	if stats.LeafNodes < 150/leafThreshold {
		t.Errorf("Expected at least %d leaves, got %d", 150/leafThreshold, stats.LeafNodes)
	}
	if stats.TotalNodes != 2*stats.LeafNodes-1 {
		t.Errorf("Binary tree should have %d nodes, got %d", 2*stats.LeafNodes-1, stats.TotalNodes)
	}
}

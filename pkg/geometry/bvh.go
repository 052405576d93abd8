package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// primitive references one triangle of one registered mesh
type primitive struct {
	geomID int
	primID int
	bounds core.AABB
	center core.Vec3
}

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	prims       []primitive // Leaf primitives (nil for internal nodes)
}

// BVH is a Bounding Volume Hierarchy over the triangles of a set of meshes.
// It is immutable once built and safe for concurrent queries.
type BVH struct {
	Root   *BVHNode
	meshes []*TriangleMesh
}

// Leaf threshold: if we have this many or fewer triangles, store them in a leaf node
const leafThreshold = 8

// NewBVH builds a BVH over every triangle of meshes. A mesh's index in the
// slice is its geometry ID.
func NewBVH(meshes []*TriangleMesh) *BVH {
	var prims []primitive
	for geomID, mesh := range meshes {
		for primID := 0; primID < mesh.NumTriangles(); primID++ {
			bounds := mesh.TriangleBounds(primID)
			prims = append(prims, primitive{
				geomID: geomID,
				primID: primID,
				bounds: bounds,
				center: bounds.Center(),
			})
		}
	}

	bvh := &BVH{meshes: meshes}
	if len(prims) > 0 {
		bvh.Root = buildBVH(prims)
	}
	return bvh
}

// buildBVH recursively splits at the middle of the longest axis of the centroid bounds
func buildBVH(prims []primitive) *BVHNode {
	bounds := core.EmptyAABB()
	centers := core.EmptyAABB()
	for _, p := range prims {
		bounds = bounds.Union(p.bounds)
		centers = centers.Extend(p.center)
	}

	if len(prims) <= leafThreshold {
		return &BVHNode{BoundingBox: bounds, prims: prims}
	}

	axis := centers.LongestAxis()
	minVal, maxVal := centers.Min.Axis(axis), centers.Max.Axis(axis)
	// All centroids coincide
	if maxVal <= minVal {
		return &BVHNode{BoundingBox: bounds, prims: prims}
	}
	splitPos := (minVal + maxVal) * 0.5

	// Partition in place
	mid := 0
	for i := range prims {
		if prims[i].center.Axis(axis) < splitPos {
			prims[i], prims[mid] = prims[mid], prims[i]
			mid++
		}
	}
	if mid == 0 || mid == len(prims) {
		return &BVHNode{BoundingBox: bounds, prims: prims}
	}

	return &BVHNode{
		BoundingBox: bounds,
		Left:        buildBVH(prims[:mid]),
		Right:       buildBVH(prims[mid:]),
	}
}

// Intersect finds the closest hit in [ray.TNear, ray.TFar] and records it on the ray
func (bvh *BVH) Intersect(ray *core.Ray) bool {
	if bvh.Root == nil {
		return false
	}
	invDir := core.Reciprocal(ray.Direction)
	return bvh.hitNode(bvh.Root, ray, invDir, false)
}

// Occluded reports whether anything lies in [ray.TNear, ray.TFar]. The ray is not modified.
func (bvh *BVH) Occluded(ray *core.Ray) bool {
	if bvh.Root == nil {
		return false
	}
	probe := *ray
	invDir := core.Reciprocal(ray.Direction)
	return bvh.hitNode(bvh.Root, &probe, invDir, true)
}

// hitNode recursively tests ray intersection with BVH nodes, shrinking ray.TFar on each hit
func (bvh *BVH) hitNode(node *BVHNode, ray *core.Ray, invDir core.Vec3, anyHit bool) bool {
	if !node.BoundingBox.Hit(ray.Origin, invDir, ray.TNear, ray.TFar) {
		return false
	}

	if node.prims != nil {
		hitAnything := false
		for _, p := range node.prims {
			v0, v1, v2 := bvh.meshes[p.geomID].Triangle(p.primID)
			t, u, v, ok := IntersectTriangle(ray.Origin, ray.Direction, v0, v1, v2, ray.TNear, ray.TFar)
			if !ok {
				continue
			}
			if anyHit {
				return true
			}
			hitAnything = true
			ray.TFar = t
			ray.U = u
			ray.V = v
			ray.GeomNormal = FaceNormal(v0, v1, v2)
			ray.GeomID = p.geomID
			ray.PrimID = p.primID
		}
		return hitAnything
	}

	hitLeft := bvh.hitNode(node.Left, ray, invDir, anyHit)
	if hitLeft && anyHit {
		return true
	}
	hitRight := bvh.hitNode(node.Right, ray, invDir, anyHit)
	return hitLeft || hitRight
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// BVHStats describes the shape of a built hierarchy
type BVHStats struct {
	TotalNodes     int
	LeafNodes      int
	MaxDepth       int
	AvgDepth       float64
	TotalTriangles int
}

// Stats walks the hierarchy and returns statistics about it
func (bvh *BVH) Stats() BVHStats {
	if bvh.Root == nil {
		return BVHStats{}
	}

	stats := BVHStats{}
	collectStats(bvh.Root, 0, &stats)
	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}
	return stats
}

func collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.prims != nil {
		stats.LeafNodes++
		stats.TotalTriangles += len(node.prims)
		stats.AvgDepth += float64(depth)
		return
	}
	collectStats(node.Left, depth+1, stats)
	collectStats(node.Right, depth+1, stats)
}

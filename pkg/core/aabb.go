package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// EmptyAABB returns an inverted box that any Union or Extend replaces
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: Splat(inf), Max: Splat(-inf)}
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, point := range points {
		box = box.Extend(point)
	}
	return box
}

// Extend returns the box grown to contain point p
func (aabb AABB) Extend(p Vec3) AABB {
	return AABB{Min: aabb.Min.Min(p), Max: aabb.Max.Max(p)}
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: aabb.Min.Min(other.Min), Max: aabb.Max.Max(other.Max)}
}

// Hit tests if a ray's [tMin, tMax] interval overlaps the box using the slab method.
// invDir is the component-wise reciprocal of the ray direction, computed once per ray.
func (aabb AABB) Hit(origin, invDir Vec3, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		inv := invDir.Axis(axis)
		o := origin.Axis(axis)
		t1 := (aabb.Min.Axis(axis) - o) * inv
		t2 := (aabb.Max.Axis(axis) - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		// NaN from 0*inf (origin on a slab plane of a parallel ray) leaves the interval unchanged
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB
func (aabb AABB) SurfaceArea() float64 {
	size := aabb.Size()
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0
	}
	if size.Y > size.Z {
		return 1
	}
	return 2
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Reciprocal returns 1/d per component, used by AABB.Hit
func Reciprocal(d Vec3) Vec3 {
	return Vec3{1 / d.X, 1 / d.Y, 1 / d.Z}
}

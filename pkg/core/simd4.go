package core

import "github.com/chewxy/math32"

// slabTest is the AABB-slab test for a single node (pkg/core/bvh.go's
// bvhNode, which stores only its own float32 bounds). It does the
// per-axis near/far selection with math32 scalar ops, swapping the planes
// when the direction component is negative; it uses no SIMD instructions
// and does not test both children of a node at once.
func slabTest(node *bvhNode, ray *Ray, invD [3]float32) (tEntry float32, ok bool) {
	origin := [3]float32{float32(ray.Origin.X), float32(ray.Origin.Y), float32(ray.Origin.Z)}
	tMin := float32(ray.Near)
	tMax := float32(ray.Far)

	for axis := 0; axis < 3; axis++ {
		t1 := (node.BoundsMin[axis] - origin[axis]) * invD[axis]
		t2 := (node.BoundsMax[axis] - origin[axis]) * invD[axis]
		if invD[axis] < 0 {
			t1, t2 = t2, t1
		}
		tMin = math32.Max(tMin, t1)
		tMax = math32.Min(tMax, t2)
		if tMax <= tMin {
			return tMin, false
		}
	}
	return tMin, true
}

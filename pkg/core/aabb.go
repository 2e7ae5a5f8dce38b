package core

import "math"

// AABB is an axis-aligned bounding box, with a slab test and a
// SurfaceArea method used by the SAH builder.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns an AABB with inverted bounds, the identity element for
// Union — used by the BVH builder to accumulate bounds incrementally.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

func NewAABB(min, max Vec3) AABB { return AABB{Min: min, Max: max} }

func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	b := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = b.ExpandPoint(p)
	}
	return b
}

func (a AABB) ExpandPoint(p Vec3) AABB {
	return AABB{
		Min: Vec3{math.Min(a.Min.X, p.X), math.Min(a.Min.Y, p.Y), math.Min(a.Min.Z, p.Z)},
		Max: Vec3{math.Max(a.Max.X, p.X), math.Max(a.Max.Y, p.Y), math.Max(a.Max.Z, p.Z)},
	}
}

func (a AABB) Union(o AABB) AABB {
	return AABB{
		Min: Vec3{math.Min(a.Min.X, o.Min.X), math.Min(a.Min.Y, o.Min.Y), math.Min(a.Min.Z, o.Min.Z)},
		Max: Vec3{math.Max(a.Max.X, o.Max.X), math.Max(a.Max.Y, o.Max.Y), math.Max(a.Max.Z, o.Max.Z)},
	}
}

func (a AABB) Center() Vec3 { return a.Min.Add(a.Max).Multiply(0.5) }
func (a AABB) Size() Vec3   { return a.Max.Subtract(a.Min) }

// SurfaceArea is the `A` term in the SAH split cost.
func (a AABB) SurfaceArea() float64 {
	s := a.Size()
	if s.X < 0 || s.Y < 0 || s.Z < 0 {
		return 0
	}
	return 2 * (s.X*s.Y + s.Y*s.Z + s.Z*s.X)
}

// LongestAxis returns 0/1/2 for X/Y/Z, used by the degenerate-span
// midpoint-split fallback.
func (a AABB) LongestAxis() int {
	s := a.Size()
	if s.X > s.Y && s.X > s.Z {
		return 0
	}
	if s.Y > s.Z {
		return 1
	}
	return 2
}

func (a AABB) Axis(axis int) (min, max float64) {
	switch axis {
	case 0:
		return a.Min.X, a.Max.X
	case 1:
		return a.Min.Y, a.Max.Y
	default:
		return a.Min.Z, a.Max.Z
	}
}

func (a AABB) IsValid() bool {
	return a.Min.X <= a.Max.X && a.Min.Y <= a.Max.Y && a.Min.Z <= a.Max.Z
}

func (a AABB) Expand(amount float64) AABB {
	e := Splat(amount)
	return AABB{Min: a.Min.Subtract(e), Max: a.Max.Add(e)}
}

// BoundingSphere returns a conservative enclosing sphere (center, radius),
// used by the light importance tree whose nodes store a
// bounding sphere rather than an AABB.
func (a AABB) BoundingSphere() (center Vec3, radius float64) {
	center = a.Center()
	radius = a.Max.Subtract(center).Length()
	return
}

// Hit performs the two-sided slab test against [tMin, tMax), returning the
// entry distance as well so the BVH traversal can order children
// front-to-back.
func (a AABB) Hit(ray Ray, tMin, tMax float64) (tEntry float64, ok bool) {
	invD := [3]float64{1 / ray.Direction.X, 1 / ray.Direction.Y, 1 / ray.Direction.Z}
	origin := [3]float64{ray.Origin.X, ray.Origin.Y, ray.Origin.Z}
	lo := [3]float64{a.Min.X, a.Min.Y, a.Min.Z}
	hi := [3]float64{a.Max.X, a.Max.Y, a.Max.Z}

	for axis := 0; axis < 3; axis++ {
		t1 := (lo[axis] - origin[axis]) * invD[axis]
		t2 := (hi[axis] - origin[axis]) * invD[axis]
		if invD[axis] < 0 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMax <= tMin {
			return tMin, false
		}
	}
	return tMin, true
}

package geometry

import (
	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/material"
)

// Aggregate is a compound primitive: many sub-primitives indexed by a
// single SAH BVH, the container a scene's top level (and any instanced
// sub-assembly) is built from.
type Aggregate struct {
	Prims  []Primitive
	bvh    *core.BVH
	bounds core.AABB
}

func NewAggregate(prims []Primitive) *Aggregate {
	a := &Aggregate{Prims: prims}
	bounds := make([]core.PrimitiveBounds, len(prims))
	a.bounds = core.EmptyAABB()
	for i, p := range prims {
		box := p.BoundingBox()
		bounds[i] = core.PrimitiveBounds{Box: box, Centroid: box.Center(), ID: i}
		a.bounds = a.bounds.Union(box)
	}
	a.bvh = core.NewBVH(bounds)
	return a
}

// WorldBounds returns the finite scene center/radius the BVH computed,
// the values infinite-light sampling needs to place itself at a finite
// distance.
func (a *Aggregate) WorldBounds() (core.Vec3, float64) { return a.bvh.Center, a.bvh.Radius }

func (a *Aggregate) Intersect(ray core.Ray, hit *Intersection) bool {
	found := false
	a.bvh.Intersect(&ray, func(primID int, r *core.Ray) bool {
		var h Intersection
		if a.Prims[primID].Intersect(*r, &h) {
			r.Far = h.T
			*hit = h
			found = true
			return true
		}
		return false
	})
	return found
}

func (a *Aggregate) Occluded(ray core.Ray) bool {
	hit := false
	a.bvh.Occluded(ray, func(primID int, r core.Ray) bool {
		if a.Prims[primID].Occluded(r) {
			hit = true
			return true
		}
		return false
	})
	return hit
}

func (a *Aggregate) IntersectionInfo(ray core.Ray, hit Intersection) material.SurfaceInteraction {
	return hit.Prim.IntersectionInfo(ray, hit)
}

func (a *Aggregate) TangentSpace(info material.SurfaceInteraction) (core.Vec3, core.Vec3, bool) {
	return core.Vec3{}, core.Vec3{}, false
}

func (a *Aggregate) HitBackside(hit Intersection) bool { return hit.Prim.HitBackside(hit) }

func (a *Aggregate) BoundingBox() core.AABB { return a.bounds }

func (a *Aggregate) EmissionForBackground(ray core.Ray) core.Vec3 { return core.Vec3{} }

func (a *Aggregate) IsDirac() bool     { return false }
func (a *Aggregate) IsEmissive() bool  { return false }
func (a *Aggregate) IsSamplable() bool { return false }

func (a *Aggregate) SampleDirect(p core.Vec3, sampler core.Sampler) (LightSample, bool) {
	return LightSample{}, false
}

func (a *Aggregate) DirectPDF(hit Intersection, info material.SurfaceInteraction, p core.Vec3) float64 {
	return 0
}

func (a *Aggregate) EvalDirect(hit Intersection, info material.SurfaceInteraction) core.Vec3 {
	return core.Vec3{}
}

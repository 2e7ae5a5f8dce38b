// Package integrator drives the path-tracing radiance estimator: the
// top of the core, composing the BVH-accelerated scene traversal
// (pkg/geometry), scatter models (pkg/material), participating media
// (pkg/medium) and the light importance tree (pkg/lights) into a single
// unbiased per-sample estimate.
package integrator

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/geometry"
	"github.com/lumenforge/tracecore/pkg/lights"
	"github.com/lumenforge/tracecore/pkg/medium"
)

// Scene is the immutable, already-prepared object graph the integrator
// traces against: everything past `prepareForRender`, read-only for the
// remainder of the render (§5). Building one (discovering emissive
// primitives, estimating their power, constructing the light tree) is
// scene-setup plumbing; callers — typically a loader in pkg/loaders —
// assemble it once and hand it to every worker's PathTracer.
type Scene struct {
	Root         geometry.Primitive   // top-level aggregate
	Infinites    []geometry.Primitive // environment domes, queried on a miss
	Lights       *lights.Tree
	LightPrims   []geometry.Primitive // parallel to Lights.Entries(), by entry index
	CameraMedium interface{}          // medium.Medium the camera ray starts in, nil for vacuum

	emitterIndex map[geometry.Primitive]int
}

// NewScene assembles a Scene from a built aggregate and its infinite
// primitives, discovering emissive primitives reachable from allPrims
// (the caller's flat primitive list — easier to scan once during setup
// than to walk the BVH) and building the light importance tree over
// them. cameraMedium is the medium.Medium the primary ray starts inside,
// or nil for vacuum.
func NewScene(root geometry.Primitive, infinites, allPrims []geometry.Primitive, cameraMedium interface{}) *Scene {
	s := &Scene{
		Root: root, Infinites: infinites, CameraMedium: cameraMedium,
		emitterIndex: make(map[geometry.Primitive]int),
	}

	worldCenter, worldRadius := core.Vec3{}, 1e4
	if agg, ok := root.(*geometry.Aggregate); ok {
		if c, r := agg.WorldBounds(); r > 0 {
			worldCenter, worldRadius = c, r
		}
	}

	var entries []lights.Entry
	for _, p := range allPrims {
		if !p.IsSamplable() {
			continue
		}
		center, radius := worldCenter, worldRadius
		if box := p.BoundingBox(); box.IsValid() {
			if c, r := box.BoundingSphere(); isFiniteSphere(c, r) {
				center, radius = c, r
			}
		}
		entries = append(entries, lights.Entry{Prim: p, Center: center, Radius: radius, Power: lights.EstimatePower(p, center, radius, 8)})
	}
	s.Lights = lights.NewTree(entries)
	s.LightPrims = make([]geometry.Primitive, len(entries))
	for i, e := range entries {
		s.LightPrims[i] = e.Prim
		s.emitterIndex[e.Prim] = i
	}
	return s
}

// emitterIndexFor returns the light-tree entry index for a primitive a
// BSDF-sampled ray happened to hit, or -1 if it isn't registered (not
// emissive, or excluded via IsSamplable).
func (s *Scene) emitterIndexFor(prim geometry.Primitive) int {
	idx, ok := s.emitterIndex[prim]
	if !ok {
		return -1
	}
	return idx
}

func (s *Scene) intersect(ray core.Ray) (geometry.Intersection, bool) {
	var hit geometry.Intersection
	ok := s.Root.Intersect(ray, &hit)
	return hit, ok
}

// isFiniteSphere reports whether a bounding sphere is usable as a light
// importance tree node bound. Infinite primitives (environment domes) have
// an unbounded AABB whose center/radius come out NaN or Inf; the caller
// falls back to the scene's finite world bounds for those instead.
func isFiniteSphere(c core.Vec3, r float64) bool {
	return !math.IsInf(r, 0) && !math.IsNaN(r) &&
		!math.IsInf(c.X, 0) && !math.IsInf(c.Y, 0) && !math.IsInf(c.Z, 0) &&
		!math.IsNaN(c.X) && !math.IsNaN(c.Y) && !math.IsNaN(c.Z)
}

func asMedium(v interface{}) medium.Medium {
	if v == nil {
		return nil
	}
	m, _ := v.(medium.Medium)
	return m
}

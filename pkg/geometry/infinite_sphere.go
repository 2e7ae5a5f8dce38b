package geometry

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/material"
)

// InfiniteSphere is the environment-dome primitive: a direction-indexed
// emission source (a lat-long ColorSource, or a constant/gradient
// texture) with no finite geometry of its own. It never reports a hit
// from Intersect; the integrator queries EmissionForBackground once a
// path escapes the scene's finite geometry entirely.
type InfiniteSphere struct {
	Emission    material.ColorSource
	WorldRadius float64
}

func NewInfiniteSphere(emission material.ColorSource) *InfiniteSphere {
	return &InfiniteSphere{Emission: emission}
}

// directionUV maps a world-space direction to a lat-long texture
// coordinate for the ColorSource machinery (checker/image textures). U
// uses the same azimuth as the sphere primitive's UV; V runs from +Y
// (v=0) to -Y (v=1), the reverse of the sphere's V, which starts at -Y.
func directionUV(d core.Vec3) core.Vec2 {
	theta := math.Acos(math.Max(-1, math.Min(1, d.Y)))
	phi := math.Atan2(-d.Z, d.X) + math.Pi
	return core.Vec2{X: phi / (2 * math.Pi), Y: theta / math.Pi}
}

func (s *InfiniteSphere) Intersect(ray core.Ray, hit *Intersection) bool { return false }
func (s *InfiniteSphere) Occluded(ray core.Ray) bool                     { return false }

func (s *InfiniteSphere) IntersectionInfo(ray core.Ray, hit Intersection) material.SurfaceInteraction {
	return material.SurfaceInteraction{}
}

func (s *InfiniteSphere) TangentSpace(info material.SurfaceInteraction) (core.Vec3, core.Vec3, bool) {
	return core.Vec3{}, core.Vec3{}, false
}

func (s *InfiniteSphere) HitBackside(hit Intersection) bool { return false }

func (s *InfiniteSphere) BoundingBox() core.AABB {
	r := core.Splat(math.Inf(1))
	return core.NewAABB(r.Negate(), r)
}

func (s *InfiniteSphere) EmissionForBackground(ray core.Ray) core.Vec3 {
	d := ray.Direction.Normalize()
	return s.Emission.Evaluate(directionUV(d), d)
}

func (s *InfiniteSphere) IsDirac() bool     { return false }
func (s *InfiniteSphere) IsEmissive() bool  { return true }
func (s *InfiniteSphere) IsSamplable() bool { return true }

// SampleDirect samples a direction uniformly on the sphere and treats it
// as an infinitely distant sample, the standard infinite-light NEE
// strategy absent importance data over the environment map.
func (s *InfiniteSphere) SampleDirect(p core.Vec3, sampler core.Sampler) (LightSample, bool) {
	dir := core.UniformSampleSphere(sampler.Next2D())
	pdf := core.UniformSpherePDF()
	emission := s.Emission.Evaluate(directionUV(dir), dir)
	return LightSample{
		P: p.Add(dir.Multiply(2 * s.farRadius())), D: dir, Dist: math.Inf(1),
		Weight: emission.Multiply(1 / pdf),
		PDF:    pdf,
	}, true
}

func (s *InfiniteSphere) farRadius() float64 {
	if s.WorldRadius > 0 {
		return s.WorldRadius
	}
	return 1e4
}

func (s *InfiniteSphere) DirectPDF(hit Intersection, info material.SurfaceInteraction, p core.Vec3) float64 {
	return core.UniformSpherePDF()
}

func (s *InfiniteSphere) EvalDirect(hit Intersection, info material.SurfaceInteraction) core.Vec3 {
	return core.Vec3{}
}

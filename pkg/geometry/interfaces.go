// Package geometry implements the primitive shapes a scene is built
// from: ray/geometry intersection, tangent-space and UV reconstruction,
// and the direct-lighting sampling hooks next-event estimation needs.
package geometry

import (
	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/material"
)

// Intersection is the transient hit record produced by a single
// primitive test: a hit distance plus a small primitive-specific scratch
// payload (barycentric coordinates, a disc/quad local offset, ...) that
// IntersectionInfo later decodes. Kept fixed-size so traversal never
// allocates.
type Intersection struct {
	T       float64
	Prim    Primitive
	Scratch [4]float64
}

// LightSample is the outcome of sampling a primitive for next-event
// estimation: a point on the light, the direction and distance from the
// shading point to it, the importance-sample weight (Le*cos/pdf already
// divided through), and the solid-angle pdf of that direction.
type LightSample struct {
	P      core.Vec3
	D      core.Vec3
	Dist   float64
	Weight core.Vec3
	PDF    float64
}

// Primitive is the contract the integrator drives every shape through;
// it never inspects concrete shape state directly.
type Primitive interface {
	// Intersect reports a hit within [ray.Near, ray.Far] and fills hit
	// (hit.T is the distance). ray is passed by value, so a caller that
	// wants ray.Far tightened sets it from hit.T itself.
	Intersect(ray core.Ray, hit *Intersection) bool
	// IntersectionInfo realizes a transient hit into the full surface
	// interaction (position, normals, uv, bsdf) the BSDF and integrator need.
	IntersectionInfo(ray core.Ray, hit Intersection) material.SurfaceInteraction
	// Occluded is a cheap any-hit test used for shadow rays.
	Occluded(ray core.Ray) bool
	// TangentSpace returns an explicit tangent/bitangent pair for
	// anisotropic BSDFs and bump mapping; ok is false when the primitive
	// has no natural tangent (the caller falls back to an arbitrary frame
	// around Ns).
	TangentSpace(info material.SurfaceInteraction) (t, b core.Vec3, ok bool)
	// HitBackside reports whether the recorded hit struck the primitive's
	// back face, used to suppress one-sided emission.
	HitBackside(hit Intersection) bool

	BoundingBox() core.AABB

	// SampleDirect draws a point on the primitive visible from p for
	// next-event estimation.
	SampleDirect(p core.Vec3, sampler core.Sampler) (LightSample, bool)
	// DirectPDF returns the solid-angle density SampleDirect would have
	// assigned to a hit already found by other means (BSDF sampling),
	// the density next-event MIS weights against.
	DirectPDF(hit Intersection, info material.SurfaceInteraction, p core.Vec3) float64
	// EvalDirect returns the emitted radiance at an already-realized hit,
	// zero for non-emissive primitives or a backside hit.
	EvalDirect(hit Intersection, info material.SurfaceInteraction) core.Vec3

	// EmissionForBackground returns the radiance a ray that escapes the
	// scene picks up from this primitive; non-infinite primitives always
	// return zero.
	EmissionForBackground(ray core.Ray) core.Vec3

	IsDirac() bool     // true for primitives with zero-measure sampling (not used here, reserved for point lights)
	IsEmissive() bool
	IsSamplable() bool // false for primitives excluded from next-event estimation (e.g. TriangleMesh, and any non-emissive shape)
}

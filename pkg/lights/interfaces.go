// Package lights builds and queries the light importance tree: a binary
// tree over the scene's emissive primitives used to pick an emitter for
// next-event estimation with probability roughly proportional to its
// unoccluded contribution at a given shading point, and to evaluate that
// same probability afterwards for multiple-importance-sampling weights.
package lights

import (
	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/geometry"
)

// Entry is one emissive primitive registered with the tree: the
// primitive itself, an explicit conservative bounding sphere, and an
// estimate of its total emitted power (the weight Sample/PDF pick
// proportionally to). Center/Radius are taken explicitly rather than
// derived from Prim.BoundingBox() internally because some primitives
// (infinite domes) have no finite box at all — the caller (typically
// Scene construction) supplies the scene's finite world bounds for
// those instead. Power is likewise supplied by the caller; EstimatePower
// below is a pragmatic shortcut for callers that don't have an analytic
// figure.
type Entry struct {
	Prim   geometry.Primitive
	Center core.Vec3
	Radius float64
	Power  float64
}

// EstimatePower approximates a primitive's total emitted power by
// averaging next-event-style samples taken from several points around an
// explicit center/radius and rescaling by that radius. It is not an
// exact radiometric power (that needs the primitive's own surface-area
// measure, out of scope here), just a relative weight good enough to
// bias tree traversal toward brighter emitters — scaled overestimation
// or underestimation across emitters of similar size cancels out in the
// Sample/PDF ratio used by the integrator's MIS weighting.
func EstimatePower(prim geometry.Primitive, center core.Vec3, radius float64, samples int) float64 {
	if samples <= 0 {
		samples = 16
	}
	if radius <= 0 {
		radius = 1e-3
	}
	probeDirs := []core.Vec3{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	}
	sampler := core.NewRandomSampler(0x5eed)
	total := 0.0
	n := 0
	for _, d := range probeDirs {
		probe := center.Add(d.Multiply(radius * 4))
		for i := 0; i < samples; i++ {
			if ls, ok := prim.SampleDirect(probe, sampler); ok {
				total += ls.Weight.Luminance()
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return (total / float64(n)) * radius * radius
}

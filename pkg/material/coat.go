package material

import (
	"github.com/lumenforge/tracecore/pkg/core"
)

// Coat layers two BSDFs at the same point: an Outer material the ray
// hits first (a coating, clearcoat, or thin film) and an Inner base
// material it reaches only when the outer layer's sampled direction
// points back into the surface. Smooth and rough dielectrics both work
// as Outer; any BSDF works as Inner. Generalizes the two-step
// scatter-then-recurse pattern used for layered surfaces.
type Coat struct {
	baseBSDF
	Outer, Inner BSDF
}

func NewCoat(outer, inner BSDF) *Coat {
	return &Coat{
		baseBSDF: baseBSDF{lobes: outer.Lobes() | inner.Lobes()},
		Outer:    outer,
		Inner:    inner,
	}
}

func (c *Coat) PrepareForRender() {
	c.Outer.PrepareForRender()
	c.Inner.PrepareForRender()
}

// Sample drives the outer layer first; if its sampled direction points
// back into the surface (wo.Z < 0 in the local frame where the geometric
// normal is +Z), the ray is re-scattered off the inner layer from the
// same point with the outer's sampled direction taken as its new
// incoming direction, and the two attenuations multiply.
func (c *Coat) Sample(e *ScatterEvent) bool {
	outerEvent := *e
	outerEvent.RequestedLobes = c.Outer.Lobes()
	if !c.Outer.Sample(&outerEvent) {
		return false
	}

	if outerEvent.Wo.Z >= 0 {
		*e = outerEvent
		return true
	}

	innerEvent := *e
	innerEvent.Wi = outerEvent.Wo.Negate()
	innerEvent.RequestedLobes = c.Inner.Lobes()
	if !c.Inner.Sample(&innerEvent) {
		// Inner layer absorbs: outer's transmitted energy is lost.
		return false
	}

	*e = innerEvent
	e.Weight = outerEvent.Weight.MultiplyVec(innerEvent.Weight)
	e.PDF = outerEvent.PDF * innerEvent.PDF
	return true
}

// Eval approximates the combined BSDF by routing to whichever layer's
// lobe set the requested lobes best match: reflective requests evaluate
// against the outer layer, transmissive/diffuse requests against the
// inner layer reached through the outer's transmission. This mirrors the
// reflection-vs-transmission-path split the two-layer model uses, without
// needing a full coupled closed-form BSDF.
func (c *Coat) Eval(e *ScatterEvent) core.Vec3 {
	if e.Wi.Z*e.Wo.Z > 0 {
		outerEvent := *e
		outerEvent.RequestedLobes = c.Outer.Lobes()
		return c.Outer.Eval(&outerEvent)
	}
	innerEvent := *e
	innerEvent.RequestedLobes = c.Inner.Lobes()
	return c.Inner.Eval(&innerEvent)
}

func (c *Coat) PDF(e *ScatterEvent) float64 {
	if e.Wi.Z*e.Wo.Z > 0 {
		outerEvent := *e
		outerEvent.RequestedLobes = c.Outer.Lobes()
		return c.Outer.PDF(&outerEvent)
	}
	innerEvent := *e
	innerEvent.RequestedLobes = c.Inner.Lobes()
	return c.Inner.PDF(&innerEvent)
}

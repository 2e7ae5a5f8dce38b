package material

import (
	"github.com/lumenforge/tracecore/pkg/core"
)

// Transparency wraps a base BSDF with an alpha cutout: with probability
// (1-alpha) the surface is skipped entirely (a forward-lobe passthrough,
// the mechanism the integrator's generalized shadow ray walks through),
// and with probability alpha the base BSDF scatters normally. Grounded
// on the alpha-texture cutout pattern every foliage/fence/chain-link
// scene needs.
type Transparency struct {
	baseBSDF
	Base  BSDF
	Alpha ColorSource // scalar alpha stored in the red channel
}

func NewTransparency(base BSDF, alpha ColorSource) *Transparency {
	return &Transparency{baseBSDF: baseBSDF{lobes: base.Lobes() | core.LobeForward}, Base: base, Alpha: alpha}
}

func (t *Transparency) alphaAt(e *ScatterEvent) float64 {
	return t.Alpha.Evaluate(e.UV, e.P).X
}

func (t *Transparency) PrepareForRender() { t.Base.PrepareForRender() }

func (t *Transparency) Eval(e *ScatterEvent) core.Vec3 {
	return t.Base.Eval(e).Multiply(t.alphaAt(e))
}

func (t *Transparency) Sample(e *ScatterEvent) bool {
	alpha := t.alphaAt(e)
	if e.Sampler.Next1D() >= alpha {
		e.Wo = e.Wi.Negate()
		e.SampledLobe = core.LobeForward
		e.PDF = 1 - alpha
		e.Weight = core.Splat(1)
		return true
	}
	if !t.Base.Sample(e) {
		return false
	}
	e.PDF *= alpha
	return true
}

func (t *Transparency) PDF(e *ScatterEvent) float64 {
	return t.alphaAt(e) * t.Base.PDF(e)
}

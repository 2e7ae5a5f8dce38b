package material

import (
	"github.com/lumenforge/tracecore/pkg/core"
)

// ThinSheet models a zero-thickness dielectric film (soap bubbles, thin
// plastic wrap) with no internal refraction bend: unlike Dielectric, the
// transmitted ray passes straight through undeviated since the two
// parallel interfaces' bends cancel in the thin-film limit, only the
// Fresnel-weighted reflect/transmit split survives.
type ThinSheet struct {
	baseBSDF
	Color ColorSource
	Ior   float64
}

func NewThinSheet(color ColorSource, ior float64) *ThinSheet {
	return &ThinSheet{
		baseBSDF: baseBSDF{lobes: core.LobeSpecularReflection | core.LobeForward},
		Color:    color,
		Ior:      ior,
	}
}

func (t *ThinSheet) Eval(e *ScatterEvent) core.Vec3 { return core.Vec3{} }
func (t *ThinSheet) PDF(e *ScatterEvent) float64    { return 0 }

func (t *ThinSheet) Sample(e *ScatterEvent) bool {
	wantReflect := e.RequestedLobes.Has(core.LobeSpecularReflection)
	wantTransmit := e.RequestedLobes.Has(core.LobeForward)
	if !wantReflect && !wantTransmit {
		return false
	}

	cosThetaI := core.AbsCosTheta(e.Wi)
	fr := thinFilmReflectance(cosThetaI, t.Ior)

	if wantReflect && (!wantTransmit || e.Sampler.Next1D() < fr) {
		e.Wo = core.Reflect(e.Wi)
		e.SampledLobe = core.LobeSpecularReflection
		prob := fr
		if !wantTransmit {
			prob = 1
		}
		e.PDF = prob
		e.Weight = t.Color.Evaluate(e.UV, e.P).Multiply(fr / prob)
		return true
	}

	e.Wo = e.Wi.Negate()
	e.SampledLobe = core.LobeForward
	prob := 1 - fr
	if !wantReflect {
		prob = 1
	}
	e.PDF = prob
	e.Weight = t.Color.Evaluate(e.UV, e.P).Multiply((1 - fr) / prob)
	return true
}

// thinFilmReflectance doubles the single-interface Fresnel term the way
// a lossless thin film's two internal bounces sum (first-order
// approximation, ignoring thin-film interference fringes).
func thinFilmReflectance(cosThetaI, ior float64) float64 {
	r := FresnelDielectric(cosThetaI, ior)
	return r * (2 - r)
}

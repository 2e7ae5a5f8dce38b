package material

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// RoughConductor is the microfacet metal BSDF: Cook-Torrance
// D*G*F/(4|cosI||cosO|) with a visible-normal-sampled distribution,
// generalizing the smooth Conductor to a continuous roughness range.
type RoughConductor struct {
	baseBSDF
	Color        ColorSource
	Eta, K       core.Vec3
	Distribution MicrofacetDistribution
}

func NewRoughConductor(color ColorSource, eta, k core.Vec3, dist MicrofacetDistribution) *RoughConductor {
	return &RoughConductor{
		baseBSDF:     baseBSDF{lobes: core.LobeGlossyReflection},
		Color:        color,
		Eta:          eta,
		K:            k,
		Distribution: dist,
	}
}

func (r *RoughConductor) Eval(e *ScatterEvent) core.Vec3 {
	if !e.RequestedLobes.Has(core.LobeGlossyReflection) || !core.SameHemisphere(e.Wi, e.Wo) {
		return core.Vec3{}
	}
	cosThetaI := core.AbsCosTheta(e.Wi)
	cosThetaO := core.AbsCosTheta(e.Wo)
	if cosThetaI == 0 || cosThetaO == 0 {
		return core.Vec3{}
	}
	wh := e.Wi.Add(e.Wo)
	if wh.IsZero() {
		return core.Vec3{}
	}
	wh = wh.Normalize()

	d := r.Distribution.D(wh)
	g := G(r.Distribution, e.Wo, e.Wi)
	fr := FresnelConductor(math.Abs(e.Wi.Dot(wh)), r.Eta, r.K)

	denom := 4 * cosThetaI * cosThetaO
	color := r.Color.Evaluate(e.UV, e.P)
	return color.MultiplyVec(fr).Multiply(d * g / denom * cosThetaO)
}

func (r *RoughConductor) Sample(e *ScatterEvent) bool {
	if !e.RequestedLobes.Has(core.LobeGlossyReflection) || e.Wi.Z == 0 {
		return false
	}
	u := e.Sampler.Next2D()
	wh := r.Distribution.SampleWh(e.Wi, u)
	wo := reflectAbout(e.Wi, wh)
	if !core.SameHemisphere(e.Wi, wo) {
		return false
	}
	e.Wo = wo
	e.SampledLobe = core.LobeGlossyReflection
	e.PDF = r.pdfFromWh(e.Wi, wh)
	if e.PDF == 0 {
		return false
	}
	e.Weight = r.Eval(e).Multiply(1 / e.PDF)
	return true
}

func (r *RoughConductor) PDF(e *ScatterEvent) float64 {
	if !e.RequestedLobes.Has(core.LobeGlossyReflection) || !core.SameHemisphere(e.Wi, e.Wo) {
		return 0
	}
	wh := e.Wi.Add(e.Wo)
	if wh.IsZero() {
		return 0
	}
	wh = wh.Normalize()
	return r.pdfFromWh(e.Wi, wh)
}

func (r *RoughConductor) pdfFromWh(wi, wh core.Vec3) float64 {
	dwhDwo := 1 / (4 * math.Abs(wi.Dot(wh)))
	if math.IsInf(dwhDwo, 1) {
		return 0
	}
	return r.Distribution.PDF(wi, wh) * dwhDwo
}

// reflectAbout reflects wi about an arbitrary half-vector wh (not
// necessarily the local +Z axis), used by every microfacet-sampled BSDF.
func reflectAbout(wi, wh core.Vec3) core.Vec3 {
	return wh.Multiply(2 * wi.Dot(wh)).Subtract(wi)
}

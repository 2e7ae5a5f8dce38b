package material

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// RoughDielectric is the microfacet glass BSDF: both reflection and
// transmission lobes scatter through a visible-normal-sampled
// distribution instead of a single Dirac-delta pair, the glossy
// generalization of Dielectric.
type RoughDielectric struct {
	baseBSDF
	Color        ColorSource
	Ior          float64
	Distribution MicrofacetDistribution
}

func NewRoughDielectric(color ColorSource, ior float64, dist MicrofacetDistribution) *RoughDielectric {
	return &RoughDielectric{
		baseBSDF:     baseBSDF{lobes: core.LobeGlossyReflection | core.LobeGlossyTransmission},
		Color:        color,
		Ior:          ior,
		Distribution: dist,
	}
}

func (r *RoughDielectric) halfVector(wi, wo core.Vec3, eta float64) (core.Vec3, bool) {
	if core.CosTheta(wo) == 0 || core.CosTheta(wi) == 0 {
		return core.Vec3{}, false
	}
	reflect := core.CosTheta(wi)*core.CosTheta(wo) > 0
	etaScale := 1.0
	if !reflect {
		etaScale = eta
	}
	wh := wi.Multiply(etaScale).Add(wo)
	if wh.IsZero() {
		return core.Vec3{}, false
	}
	wh = wh.Normalize()
	if wh.Z < 0 {
		wh = wh.Negate()
	}
	return wh, true
}

func (r *RoughDielectric) Eval(e *ScatterEvent) core.Vec3 {
	reflect := core.CosTheta(e.Wi)*core.CosTheta(e.Wo) > 0
	if reflect && !e.RequestedLobes.Has(core.LobeGlossyReflection) {
		return core.Vec3{}
	}
	if !reflect && !e.RequestedLobes.Has(core.LobeGlossyTransmission) {
		return core.Vec3{}
	}

	entering := core.CosTheta(e.Wi) > 0
	eta := r.Ior
	if entering {
		eta = 1 / r.Ior
	}

	wh, ok := r.halfVector(e.Wi, e.Wo, eta)
	if !ok {
		return core.Vec3{}
	}

	fr := FresnelDielectric(e.Wi.Dot(wh), r.Ior)
	color := r.Color.Evaluate(e.UV, e.P)

	if reflect {
		d := r.Distribution.D(wh)
		g := G(r.Distribution, e.Wo, e.Wi)
		denom := 4 * core.AbsCosTheta(e.Wi) * core.AbsCosTheta(e.Wo)
		if denom == 0 {
			return core.Vec3{}
		}
		return color.Multiply(d * g * fr / denom * core.AbsCosTheta(e.Wo))
	}

	sqrtDenom := e.Wi.Dot(wh) + eta*e.Wo.Dot(wh)
	if math.Abs(sqrtDenom) < 1e-9 {
		return core.Vec3{}
	}
	d := r.Distribution.D(wh)
	g := G(r.Distribution, e.Wo, e.Wi)
	factor := math.Abs(d*g*(1-fr)*
		math.Abs(e.Wi.Dot(wh))*math.Abs(e.Wo.Dot(wh))/
		(core.AbsCosTheta(e.Wi)*core.AbsCosTheta(e.Wo)*sqrtDenom*sqrtDenom)) / (eta * eta)
	return color.Multiply(factor * core.AbsCosTheta(e.Wo))
}

func (r *RoughDielectric) Sample(e *ScatterEvent) bool {
	wantReflect := e.RequestedLobes.Has(core.LobeGlossyReflection)
	wantTransmit := e.RequestedLobes.Has(core.LobeGlossyTransmission)
	if !wantReflect && !wantTransmit || e.Wi.Z == 0 {
		return false
	}

	u := e.Sampler.Next2D()
	wh := r.Distribution.SampleWh(e.Wi, u)
	fr := FresnelDielectric(e.Wi.Dot(wh), r.Ior)

	if wantReflect && (!wantTransmit || e.Sampler.Next1D() < fr) {
		wo := reflectAbout(e.Wi, wh)
		if !core.SameHemisphere(e.Wi, wo) {
			return false
		}
		e.Wo = wo
		e.SampledLobe = core.LobeGlossyReflection
		e.PDF = r.PDF(e)
		if e.PDF == 0 {
			return false
		}
		e.Weight = r.Eval(e).Multiply(1 / e.PDF)
		return true
	}

	entering := core.CosTheta(e.Wi) > 0
	eta := r.Ior
	if entering {
		eta = 1 / r.Ior
	}
	cosI := e.Wi.Dot(wh)
	if cosI <= 0 {
		return false
	}
	sin2T := eta * eta * (1 - cosI*cosI)
	if sin2T >= 1 {
		return false
	}
	wt := e.Wi.Multiply(-eta).Add(wh.Multiply(eta*cosI - math.Sqrt(1-sin2T)))
	if core.SameHemisphere(e.Wi, wt) {
		return false
	}
	e.Wo = wt
	e.SampledLobe = core.LobeGlossyTransmission
	e.PDF = r.PDF(e)
	if e.PDF == 0 {
		return false
	}
	e.Weight = r.Eval(e).Multiply(1 / e.PDF)
	return true
}

func (r *RoughDielectric) PDF(e *ScatterEvent) float64 {
	reflect := core.CosTheta(e.Wi)*core.CosTheta(e.Wo) > 0
	entering := core.CosTheta(e.Wi) > 0
	eta := r.Ior
	if entering {
		eta = 1 / r.Ior
	}
	wh, ok := r.halfVector(e.Wi, e.Wo, eta)
	if !ok {
		return 0
	}
	fr := FresnelDielectric(e.Wi.Dot(wh), r.Ior)

	if reflect {
		dwhDwo := 1 / (4 * math.Abs(e.Wi.Dot(wh)))
		return r.Distribution.PDF(e.Wi, wh) * dwhDwo * fr
	}
	sqrtDenom := e.Wi.Dot(wh) + eta*e.Wo.Dot(wh)
	dwhDwo := eta * eta * math.Abs(e.Wo.Dot(wh)) / (sqrtDenom * sqrtDenom)
	return r.Distribution.PDF(e.Wi, wh) * dwhDwo * (1 - fr)
}

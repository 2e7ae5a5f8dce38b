package material

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// RoughPlastic is Plastic's glossy counterpart: a microfacet dielectric
// specular lobe over a Lambertian base, the generalization used for
// brushed or satin-finish coated surfaces.
type RoughPlastic struct {
	baseBSDF
	Color        ColorSource
	Ior          float64
	Distribution MicrofacetDistribution
}

func NewRoughPlastic(color ColorSource, ior float64, dist MicrofacetDistribution) *RoughPlastic {
	return &RoughPlastic{
		baseBSDF:     baseBSDF{lobes: core.LobeGlossyReflection | core.LobeDiffuseReflection},
		Color:        color,
		Ior:          ior,
		Distribution: dist,
	}
}

func (rp *RoughPlastic) specular(e *ScatterEvent) (core.Vec3, float64) {
	wh := e.Wi.Add(e.Wo)
	if wh.IsZero() {
		return core.Vec3{}, 0
	}
	wh = wh.Normalize()
	cosThetaI := core.AbsCosTheta(e.Wi)
	cosThetaO := core.AbsCosTheta(e.Wo)
	if cosThetaI == 0 || cosThetaO == 0 {
		return core.Vec3{}, 0
	}
	d := rp.Distribution.D(wh)
	g := G(rp.Distribution, e.Wo, e.Wi)
	fr := FresnelDielectric(math.Abs(e.Wi.Dot(wh)), rp.Ior)
	val := core.Splat(fr * d * g / (4 * cosThetaI * cosThetaO) * cosThetaO)
	pdf := rp.Distribution.PDF(e.Wi, wh) / (4 * math.Abs(e.Wi.Dot(wh)))
	return val, pdf
}

func (rp *RoughPlastic) Eval(e *ScatterEvent) core.Vec3 {
	if !core.SameHemisphere(e.Wi, e.Wo) {
		return core.Vec3{}
	}
	var out core.Vec3
	if e.RequestedLobes.Has(core.LobeGlossyReflection) {
		spec, _ := rp.specular(e)
		out = out.Add(spec)
	}
	if e.RequestedLobes.Has(core.LobeDiffuseReflection) {
		fr := FresnelDielectric(core.AbsCosTheta(e.Wi), rp.Ior)
		albedo := rp.Color.Evaluate(e.UV, e.P)
		out = out.Add(albedo.Multiply((1 - fr) * core.AbsCosTheta(e.Wo) / math.Pi))
	}
	return out
}

func (rp *RoughPlastic) Sample(e *ScatterEvent) bool {
	wantSpec := e.RequestedLobes.Has(core.LobeGlossyReflection)
	wantDiff := e.RequestedLobes.Has(core.LobeDiffuseReflection)
	if !wantSpec && !wantDiff {
		return false
	}
	fr := FresnelDielectric(core.AbsCosTheta(e.Wi), rp.Ior)

	if wantSpec && (!wantDiff || e.Sampler.Next1D() < fr) {
		u := e.Sampler.Next2D()
		wh := rp.Distribution.SampleWh(e.Wi, u)
		wo := reflectAbout(e.Wi, wh)
		if !core.SameHemisphere(e.Wi, wo) {
			return false
		}
		e.Wo = wo
		e.SampledLobe = core.LobeGlossyReflection
		e.PDF = rp.PDF(e)
		if e.PDF == 0 {
			return false
		}
		e.Weight = rp.Eval(e).Multiply(1 / e.PDF)
		return true
	}

	u := e.Sampler.Next2D()
	wo := core.CosineSampleHemisphere(u)
	if e.Wi.Z < 0 {
		wo.Z = -wo.Z
	}
	e.Wo = wo
	e.SampledLobe = core.LobeDiffuseReflection
	e.PDF = rp.PDF(e)
	if e.PDF == 0 {
		return false
	}
	e.Weight = rp.Eval(e).Multiply(1 / e.PDF)
	return true
}

func (rp *RoughPlastic) PDF(e *ScatterEvent) float64 {
	if !core.SameHemisphere(e.Wi, e.Wo) {
		return 0
	}
	fr := FresnelDielectric(core.AbsCosTheta(e.Wi), rp.Ior)
	diffusePdf := core.CosineHemispherePDF(core.AbsCosTheta(e.Wo))
	_, specPdf := rp.specular(e)

	hasSpec := e.RequestedLobes.Has(core.LobeGlossyReflection)
	hasDiff := e.RequestedLobes.Has(core.LobeDiffuseReflection)
	switch {
	case hasSpec && hasDiff:
		return fr*specPdf + (1-fr)*diffusePdf
	case hasSpec:
		return specPdf
	case hasDiff:
		return diffusePdf
	default:
		return 0
	}
}

func (rp *RoughPlastic) Albedo(info *SurfaceInteraction) core.Vec3 {
	return rp.Color.Evaluate(info.UV, info.P)
}

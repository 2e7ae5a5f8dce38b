package material

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Plastic layers a smooth dielectric specular lobe over a Lambertian
// diffuse base: Fresnel reflectance picks between the two stochastically
// on sample, and Eval sums both weighted by (1-Fresnel) on the diffuse
// term so energy stays conserved as the specular highlight strengthens.
type Plastic struct {
	baseBSDF
	Color ColorSource
	Ior   float64
}

func NewPlastic(color ColorSource, ior float64) *Plastic {
	return &Plastic{baseBSDF: baseBSDF{lobes: core.LobeSpecularReflection | core.LobeDiffuseReflection}, Color: color, Ior: ior}
}

func (p *Plastic) specWeight(e *ScatterEvent) float64 {
	return FresnelDielectric(core.AbsCosTheta(e.Wi), p.Ior)
}

func (p *Plastic) Eval(e *ScatterEvent) core.Vec3 {
	if !core.SameHemisphere(e.Wi, e.Wo) {
		return core.Vec3{}
	}
	var out core.Vec3
	if e.RequestedLobes.Has(core.LobeDiffuseReflection) {
		fr := p.specWeight(e)
		albedo := p.Color.Evaluate(e.UV, e.P)
		out = albedo.Multiply((1 - fr) * core.AbsCosTheta(e.Wo) / math.Pi)
	}
	return out
}

func (p *Plastic) Sample(e *ScatterEvent) bool {
	wantSpec := e.RequestedLobes.Has(core.LobeSpecularReflection)
	wantDiff := e.RequestedLobes.Has(core.LobeDiffuseReflection)
	if !wantSpec && !wantDiff {
		return false
	}
	fr := p.specWeight(e)

	if wantSpec && (!wantDiff || e.Sampler.Next1D() < fr) {
		e.Wo = core.Reflect(e.Wi)
		e.SampledLobe = core.LobeSpecularReflection
		prob := fr
		if !wantDiff {
			prob = 1
		}
		e.PDF = prob
		e.Weight = core.Splat(fr / prob)
		return true
	}

	u := e.Sampler.Next2D()
	wo := core.CosineSampleHemisphere(u)
	if e.Wi.Z < 0 {
		wo.Z = -wo.Z
	}
	e.Wo = wo
	e.SampledLobe = core.LobeDiffuseReflection
	diffusePdf := core.CosineHemispherePDF(core.AbsCosTheta(e.Wo))
	prob := 1 - fr
	if !wantSpec {
		prob = 1
	}
	e.PDF = prob * diffusePdf
	if e.PDF == 0 {
		return false
	}
	albedo := p.Color.Evaluate(e.UV, e.P)
	e.Weight = albedo.Multiply((1 - fr) * diffusePdf / e.PDF)
	return true
}

func (p *Plastic) PDF(e *ScatterEvent) float64 {
	if !e.RequestedLobes.Has(core.LobeDiffuseReflection) || !core.SameHemisphere(e.Wi, e.Wo) {
		return 0
	}
	fr := p.specWeight(e)
	diffusePdf := core.CosineHemispherePDF(core.AbsCosTheta(e.Wo))
	prob := 1 - fr
	if !e.RequestedLobes.Has(core.LobeSpecularReflection) {
		prob = 1
	}
	return prob * diffusePdf
}

func (p *Plastic) Albedo(info *SurfaceInteraction) core.Vec3 {
	return p.Color.Evaluate(info.UV, info.P)
}

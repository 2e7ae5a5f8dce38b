package material

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// OrenNayar is the microfacet-diffuse model that accounts for rough,
// non-Lambertian diffuse reflectance (cloth, unglazed ceramic, concrete).
// Importance sampling is shared with Lambertian (cosine-weighted) since
// the roughness term only reshapes the cosine lobe's magnitude, not its
// dominant direction.
type OrenNayar struct {
	baseBSDF
	Color     ColorSource
	Roughness float64 // standard deviation of the microfacet slope angle, degrees

	a, b float64 // precomputed in PrepareForRender
}

func NewOrenNayar(albedo ColorSource, roughnessDegrees float64) *OrenNayar {
	o := &OrenNayar{baseBSDF: baseBSDF{lobes: core.LobeDiffuseReflection}, Color: albedo, Roughness: roughnessDegrees}
	o.precompute()
	return o
}

func (o *OrenNayar) precompute() {
	sigma := o.Roughness * math.Pi / 180
	sigma2 := sigma * sigma
	o.a = 1 - sigma2/(2*(sigma2+0.33))
	o.b = 0.45 * sigma2 / (sigma2 + 0.09)
}

func (o *OrenNayar) PrepareForRender() { o.precompute() }

func (o *OrenNayar) Eval(e *ScatterEvent) core.Vec3 {
	if !e.RequestedLobes.Has(core.LobeDiffuseReflection) || !core.SameHemisphere(e.Wi, e.Wo) {
		return core.Vec3{}
	}

	sinThetaI := core.SinTheta(e.Wi)
	sinThetaO := core.SinTheta(e.Wo)

	maxCos := 0.0
	if sinThetaI > 1e-4 && sinThetaO > 1e-4 {
		sinPhiI, cosPhiI := sinCosPhi(e.Wi)
		sinPhiO, cosPhiO := sinCosPhi(e.Wo)
		dCos := cosPhiI*cosPhiO + sinPhiI*sinPhiO
		maxCos = math.Max(0, dCos)
	}

	var sinAlpha, tanBeta float64
	if core.AbsCosTheta(e.Wi) > core.AbsCosTheta(e.Wo) {
		sinAlpha = sinThetaO
		tanBeta = sinThetaI / math.Max(core.AbsCosTheta(e.Wi), 1e-7)
	} else {
		sinAlpha = sinThetaI
		tanBeta = sinThetaO / math.Max(core.AbsCosTheta(e.Wo), 1e-7)
	}

	albedo := o.Color.Evaluate(e.UV, e.P)
	factor := o.a + o.b*maxCos*sinAlpha*tanBeta
	return albedo.Multiply(factor * core.AbsCosTheta(e.Wo) / math.Pi)
}

func (o *OrenNayar) Sample(e *ScatterEvent) bool {
	if !e.RequestedLobes.Has(core.LobeDiffuseReflection) {
		return false
	}
	u := e.Sampler.Next2D()
	wo := core.CosineSampleHemisphere(u)
	if e.Wi.Z < 0 {
		wo.Z = -wo.Z
	}
	e.Wo = wo
	e.SampledLobe = core.LobeDiffuseReflection
	e.PDF = o.PDF(e)
	if e.PDF == 0 {
		return false
	}
	e.Weight = o.Eval(e).Multiply(1 / e.PDF)
	return true
}

func (o *OrenNayar) PDF(e *ScatterEvent) float64 {
	if !e.RequestedLobes.Has(core.LobeDiffuseReflection) || !core.SameHemisphere(e.Wi, e.Wo) {
		return 0
	}
	return core.CosineHemispherePDF(core.AbsCosTheta(e.Wo))
}

func (o *OrenNayar) Albedo(info *SurfaceInteraction) core.Vec3 {
	return o.Color.Evaluate(info.UV, info.P)
}

func sinCosPhi(w core.Vec3) (sinPhi, cosPhi float64) {
	sinTheta := core.SinTheta(w)
	if sinTheta == 0 {
		return 0, 1
	}
	return math.Max(-1, math.Min(1, w.Y/sinTheta)), math.Max(-1, math.Min(1, w.X/sinTheta))
}

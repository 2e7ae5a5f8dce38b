package material

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Lambertian is the ideal diffuse BSDF: constant albedo/pi reflectance,
// cosine-weighted importance sampling. The simplest and most heavily
// exercised scatter model; every other diffuse-flavored BSDF
// (Oren-Nayar, diffuse transmission, the diffuse term under a coat)
// follows its shape.
type Lambertian struct {
	baseBSDF
	Color ColorSource
}

func NewLambertian(albedo ColorSource) *Lambertian {
	return &Lambertian{baseBSDF: baseBSDF{lobes: core.LobeDiffuseReflection}, Color: albedo}
}

func (l *Lambertian) Eval(e *ScatterEvent) core.Vec3 {
	if !e.RequestedLobes.Has(core.LobeDiffuseReflection) || !core.SameHemisphere(e.Wi, e.Wo) {
		return core.Vec3{}
	}
	albedo := l.Color.Evaluate(e.UV, e.P)
	return albedo.Multiply(core.AbsCosTheta(e.Wo) / math.Pi)
}

func (l *Lambertian) Sample(e *ScatterEvent) bool {
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
	e.PDF = l.PDF(e)
	if e.PDF == 0 {
		return false
	}
	e.Weight = l.Color.Evaluate(e.UV, e.P)
	return true
}

func (l *Lambertian) PDF(e *ScatterEvent) float64 {
	if !e.RequestedLobes.Has(core.LobeDiffuseReflection) || !core.SameHemisphere(e.Wi, e.Wo) {
		return 0
	}
	return core.CosineHemispherePDF(core.AbsCosTheta(e.Wo))
}

// Albedo implements AlbedoSource for render-report/debug-AOV queries.
func (l *Lambertian) Albedo(info *SurfaceInteraction) core.Vec3 {
	return l.Color.Evaluate(info.UV, info.P)
}

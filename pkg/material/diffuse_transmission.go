package material

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// DiffuseTransmission splits energy between Lambertian reflection and
// Lambertian transmission by a fixed ratio, the model leaves and thin
// cloth use where light both bounces back and passes through diffusely
// with no directional correlation to the incoming direction.
type DiffuseTransmission struct {
	baseBSDF
	Reflectance   ColorSource
	Transmittance ColorSource
}

func NewDiffuseTransmission(reflectance, transmittance ColorSource) *DiffuseTransmission {
	return &DiffuseTransmission{
		baseBSDF:      baseBSDF{lobes: core.LobeDiffuseReflection | core.LobeDiffuseTransmission},
		Reflectance:   reflectance,
		Transmittance: transmittance,
	}
}

func (d *DiffuseTransmission) Eval(e *ScatterEvent) core.Vec3 {
	cosThetaO := core.AbsCosTheta(e.Wo)
	if core.SameHemisphere(e.Wi, e.Wo) {
		if !e.RequestedLobes.Has(core.LobeDiffuseReflection) {
			return core.Vec3{}
		}
		return d.Reflectance.Evaluate(e.UV, e.P).Multiply(cosThetaO / math.Pi)
	}
	if !e.RequestedLobes.Has(core.LobeDiffuseTransmission) {
		return core.Vec3{}
	}
	return d.Transmittance.Evaluate(e.UV, e.P).Multiply(cosThetaO / math.Pi)
}

func (d *DiffuseTransmission) reflFraction(e *ScatterEvent) float64 {
	r := d.Reflectance.Evaluate(e.UV, e.P)
	t := d.Transmittance.Evaluate(e.UV, e.P)
	rSum := r.X + r.Y + r.Z
	tSum := t.X + t.Y + t.Z
	if rSum+tSum == 0 {
		return 0.5
	}
	return rSum / (rSum + tSum)
}

func (d *DiffuseTransmission) Sample(e *ScatterEvent) bool {
	wantRefl := e.RequestedLobes.Has(core.LobeDiffuseReflection)
	wantTrans := e.RequestedLobes.Has(core.LobeDiffuseTransmission)
	if !wantRefl && !wantTrans {
		return false
	}
	pRefl := d.reflFraction(e)

	u := e.Sampler.Next2D()
	wo := core.CosineSampleHemisphere(u)

	reflect := wantRefl && (!wantTrans || e.Sampler.Next1D() < pRefl)
	if reflect {
		if e.Wi.Z < 0 {
			wo.Z = -wo.Z
		}
		e.SampledLobe = core.LobeDiffuseReflection
	} else {
		if e.Wi.Z > 0 {
			wo.Z = -wo.Z
		}
		e.SampledLobe = core.LobeDiffuseTransmission
	}
	e.Wo = wo
	e.PDF = d.PDF(e)
	if e.PDF == 0 {
		return false
	}
	e.Weight = d.Eval(e).Multiply(1 / e.PDF)
	return true
}

func (d *DiffuseTransmission) PDF(e *ScatterEvent) float64 {
	cosThetaO := core.CosineHemispherePDF(core.AbsCosTheta(e.Wo))
	pRefl := d.reflFraction(e)
	hasRefl := e.RequestedLobes.Has(core.LobeDiffuseReflection)
	hasTrans := e.RequestedLobes.Has(core.LobeDiffuseTransmission)
	sameSide := core.SameHemisphere(e.Wi, e.Wo)
	switch {
	case hasRefl && hasTrans:
		if sameSide {
			return pRefl * cosThetaO
		}
		return (1 - pRefl) * cosThetaO
	case hasRefl:
		if !sameSide {
			return 0
		}
		return cosThetaO
	case hasTrans:
		if sameSide {
			return 0
		}
		return cosThetaO
	default:
		return 0
	}
}

func (d *DiffuseTransmission) Albedo(info *SurfaceInteraction) core.Vec3 {
	r := d.Reflectance.Evaluate(info.UV, info.P)
	t := d.Transmittance.Evaluate(info.UV, info.P)
	return r.Add(t)
}

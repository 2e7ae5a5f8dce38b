package material

import (
	"github.com/lumenforge/tracecore/pkg/core"
)

// Dielectric is the smooth (mirror-sharp) glass/water BSDF: a pair of
// Dirac-delta lobes, reflection and transmission, chosen stochastically
// by Fresnel reflectance. IOR is the interior/exterior ratio: Ior > 1 for
// typical glass entered from air.
type Dielectric struct {
	baseBSDF
	Color ColorSource
	Ior   float64
}

func NewDielectric(color ColorSource, ior float64) *Dielectric {
	return &Dielectric{
		baseBSDF: baseBSDF{lobes: core.LobeSpecularReflection | core.LobeSpecularTransmission},
		Color:    color,
		Ior:      ior,
	}
}

func (d *Dielectric) Eval(e *ScatterEvent) core.Vec3 { return core.Vec3{} }
func (d *Dielectric) PDF(e *ScatterEvent) float64    { return 0 }

func (d *Dielectric) Sample(e *ScatterEvent) bool {
	wantReflect := e.RequestedLobes.Has(core.LobeSpecularReflection)
	wantTransmit := e.RequestedLobes.Has(core.LobeSpecularTransmission)
	if !wantReflect && !wantTransmit {
		return false
	}

	cosThetaI := core.CosTheta(e.Wi)
	entering := cosThetaI > 0
	// eta is etaIncident/etaTransmitted, the convention core.Refract
	// expects: entering the medium from air means etaI=1, etaT=d.Ior.
	eta := 1 / d.Ior
	if !entering {
		eta = d.Ior
	}

	fr := FresnelDielectric(cosThetaI, d.Ior)

	if wantReflect && (!wantTransmit || e.Sampler.Next1D() < fr) {
		e.Wo = core.Reflect(e.Wi)
		e.SampledLobe = core.LobeSpecularReflection
		prob := fr
		if !wantTransmit {
			prob = 1
		}
		e.PDF = prob
		color := d.Color.Evaluate(e.UV, e.P)
		e.Weight = color.Multiply(fr / prob)
		return true
	}

	wt, ok := core.Refract(e.Wi, eta)
	if !ok {
		// total internal reflection: fall back to the reflective lobe.
		e.Wo = core.Reflect(e.Wi)
		e.SampledLobe = core.LobeSpecularReflection
		e.PDF = 1
		e.Weight = d.Color.Evaluate(e.UV, e.P)
		return true
	}
	e.Wo = wt
	e.SampledLobe = core.LobeSpecularTransmission
	prob := 1 - fr
	if !wantReflect {
		prob = 1
	}
	e.PDF = prob
	color := d.Color.Evaluate(e.UV, e.P)
	// Radiance transport (camera rays) scales by eta^2 = (etaI/etaT)^2,
	// the solid-angle compression correction for the non-symmetric
	// scattering a refraction interface introduces; importance transport
	// (light tracing) does not apply it.
	scale := (1 - fr) / prob
	if e.Mode == TransportRadiance {
		scale *= eta * eta
	}
	e.Weight = color.Multiply(scale)
	return true
}

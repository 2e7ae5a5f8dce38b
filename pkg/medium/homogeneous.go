package medium

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Homogeneous is a constant-density volume: absorption and scattering
// coefficients are uniform throughout the medium's interior, so free
// flight distances have the closed-form exponential distribution and
// need no ratio-tracking or grid marching.
type Homogeneous struct {
	SigmaA, SigmaS core.Vec3
	Phase          PhaseFunction
	Le             core.Vec3 // constant emission, zero for non-emissive volumes

	sigmaT     core.Vec3
	albedo     core.Vec3
	maxAlbedo  float64
	absorbOnly bool
}

func NewHomogeneous(sigmaA, sigmaS core.Vec3, phase PhaseFunction) *Homogeneous {
	m := &Homogeneous{SigmaA: sigmaA, SigmaS: sigmaS, Phase: phase}
	m.init()
	return m
}

func (m *Homogeneous) init() {
	m.sigmaT = m.SigmaA.Add(m.SigmaS)
	m.maxAlbedo = 0
	if m.sigmaT.X > 0 {
		m.albedo.X = m.SigmaS.X / m.sigmaT.X
	}
	if m.sigmaT.Y > 0 {
		m.albedo.Y = m.SigmaS.Y / m.sigmaT.Y
	}
	if m.sigmaT.Z > 0 {
		m.albedo.Z = m.SigmaS.Z / m.sigmaT.Z
	}
	m.maxAlbedo = math.Max(m.albedo.X, math.Max(m.albedo.Y, m.albedo.Z))
	m.absorbOnly = m.maxAlbedo == 0
}

func (m *Homogeneous) IsHomogeneous() bool { return true }

func (m *Homogeneous) Emission(p core.Vec3) core.Vec3 { return m.Le }

func (m *Homogeneous) SuggestMIS() bool {
	if hg, ok := m.Phase.(HenyeyGreenstein); ok {
		return math.Abs(hg.G) >= 0.1
	}
	_, isotropic := m.Phase.(Isotropic)
	return !isotropic
}

// SampleDistance draws a free-flight distance by sampling a spectral
// channel uniformly and inverting its exponential CDF, then reweights by
// the average transmittance so the estimator stays unbiased across
// wavelength-dependent sigmaT (the hero-wavelength / one-sample MIS
// trick every spectral volume integrator uses).
func (m *Homogeneous) SampleDistance(ray core.Ray, tMax float64, sampler core.Sampler) (ScatterEvent, bool) {
	if m.absorbOnly {
		if math.IsInf(tMax, 1) {
			return ScatterEvent{}, false
		}
		return ScatterEvent{T: tMax, P: ray.At(tMax), Weight: expNeg(m.sigmaT.Multiply(tMax))}, true
	}

	channel := sampler.NextDiscrete(3)
	sigmaTc := component(m.sigmaT, channel)
	t := -math.Log(1-sampler.Next1D()) / sigmaTc

	if t >= tMax {
		weight := expNeg(m.sigmaT.Multiply(tMax))
		avg := (weight.X + weight.Y + weight.Z) / 3
		if avg == 0 {
			return ScatterEvent{}, false
		}
		return ScatterEvent{T: tMax, P: ray.At(tMax), Weight: weight.Multiply(1 / avg)}, true
	}

	transmittance := expNeg(m.sigmaT.Multiply(t))
	pdf := (m.sigmaT.X*transmittance.X + m.sigmaT.Y*transmittance.Y + m.sigmaT.Z*transmittance.Z) / 3
	if pdf == 0 {
		return ScatterEvent{}, false
	}
	return ScatterEvent{
		T:        t,
		P:        ray.At(t),
		Weight:   transmittance.Multiply(1 / pdf),
		Collided: true,
	}, true
}

func (m *Homogeneous) Transmittance(ray core.Ray, t float64) core.Vec3 {
	if math.IsInf(t, 1) {
		return core.Vec3{}
	}
	return expNeg(m.sigmaT.Multiply(t))
}

func (m *Homogeneous) Scatter(wi core.Vec3, sampler core.Sampler) (core.Vec3, float64) {
	return m.Phase.Sample(wi, sampler)
}

func (m *Homogeneous) PDF(wi, wo core.Vec3) float64 {
	return m.Phase.PDF(wi, wo)
}

func expNeg(v core.Vec3) core.Vec3 {
	return core.Vec3{X: math.Exp(-v.X), Y: math.Exp(-v.Y), Z: math.Exp(-v.Z)}
}

func component(v core.Vec3, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

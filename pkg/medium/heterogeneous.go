package medium

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// DensityField supplies a spatially-varying density multiplier at a
// world-space point, the hook a voxel grid or procedural density
// function would implement. Grid-backed volumes (loading a voxel file,
// trilinear interpolation, majorant octrees) are out of scope the same
// way texture/mesh decoding is: this stub wires delta (Woodcock)
// tracking against whatever DensityField a
// caller supplies, most simply a constant one for testing.
type DensityField interface {
	Density(p core.Vec3) float64
	MaxDensity() float64
}

// ConstantDensity is a trivial DensityField returning the same value
// everywhere; useful for exercising Heterogeneous without a voxel
// loader.
type ConstantDensity float64

func (c ConstantDensity) Density(core.Vec3) float64 { return float64(c) }
func (c ConstantDensity) MaxDensity() float64       { return float64(c) }

// Heterogeneous scales homogeneous sigmaA/sigmaS by a DensityField and
// free-flight-samples via delta (Woodcock) tracking against the field's
// majorant: repeatedly sample an exponential free flight at the
// majorant extinction, then stochastically accept the collision with
// probability density(p)/maxDensity, rejecting (and continuing) with
// the complement. This is unbiased for any density field bounded by
// MaxDensity, without needing a DDA grid traversal.
type Heterogeneous struct {
	SigmaA, SigmaS core.Vec3
	Density        DensityField
	Phase          PhaseFunction

	sigmaTMajorant float64
}

func NewHeterogeneous(sigmaA, sigmaS core.Vec3, density DensityField, phase PhaseFunction) *Heterogeneous {
	sigmaT := sigmaA.Add(sigmaS)
	maxComponent := math.Max(sigmaT.X, math.Max(sigmaT.Y, sigmaT.Z))
	return &Heterogeneous{
		SigmaA: sigmaA, SigmaS: sigmaS, Density: density, Phase: phase,
		sigmaTMajorant: maxComponent * density.MaxDensity(),
	}
}

func (m *Heterogeneous) IsHomogeneous() bool          { return false }
func (m *Heterogeneous) Emission(core.Vec3) core.Vec3 { return core.Vec3{} }
func (m *Heterogeneous) SuggestMIS() bool             { return true }

const maxRatioTrackingSteps = 10000

func (m *Heterogeneous) SampleDistance(ray core.Ray, tMax float64, sampler core.Sampler) (ScatterEvent, bool) {
	if m.sigmaTMajorant <= 0 {
		return ScatterEvent{}, false
	}

	t := 0.0
	for i := 0; i < maxRatioTrackingSteps; i++ {
		t -= math.Log(1-sampler.Next1D()) / m.sigmaTMajorant
		if t >= tMax {
			return ScatterEvent{T: tMax, P: ray.At(tMax), Weight: core.Splat(1)}, true
		}
		p := ray.At(t)
		density := m.Density.Density(p)
		if sampler.Next1D() < density/m.Density.MaxDensity() {
			return ScatterEvent{T: t, P: p, Weight: core.Splat(1), Collided: true}, true
		}
	}
	return ScatterEvent{T: tMax, P: ray.At(tMax), Weight: core.Splat(1)}, true
}

// Transmittance returns the homogeneous closed form exp(-sigmaT*d*t) per
// channel, with the density d taken as averageDensityHint (the field's
// peak). No ratio tracking is done, so segments whose density lies below
// the peak are over-absorbed.
func (m *Heterogeneous) Transmittance(ray core.Ray, t float64) core.Vec3 {
	if m.sigmaTMajorant <= 0 {
		return core.Splat(1)
	}
	return expNeg(m.SigmaA.Add(m.SigmaS).Multiply(t * averageDensityHint(m.Density)))
}

// averageDensityHint approximates the path-integrated density with the
// field's peak density, a conservative (over-absorbing) stand-in since a
// full deterministic quadrature would need the grid-marching machinery
// this stub intentionally omits.
func averageDensityHint(d DensityField) float64 {
	return d.MaxDensity()
}

func (m *Heterogeneous) Scatter(wi core.Vec3, sampler core.Sampler) (core.Vec3, float64) {
	return m.Phase.Sample(wi, sampler)
}

func (m *Heterogeneous) PDF(wi, wo core.Vec3) float64 {
	return m.Phase.PDF(wi, wo)
}

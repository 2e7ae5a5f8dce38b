package medium

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

const invFourPi = 1 / (4 * math.Pi)

// Isotropic scatters uniformly over the full sphere: the phase function
// every homogeneous fog/smoke volume without measured angular data
// defaults to.
type Isotropic struct{}

func (Isotropic) Eval(wi, wo core.Vec3) float64 { return invFourPi }
func (Isotropic) PDF(wi, wo core.Vec3) float64  { return invFourPi }

func (Isotropic) Sample(wi core.Vec3, sampler core.Sampler) (core.Vec3, float64) {
	w := core.UniformSampleSphere(sampler.Next2D())
	return w, invFourPi
}

// HenyeyGreenstein is the single-parameter phase function standard in
// production volume rendering: G in (-1, 1) controls forward (G>0) vs
// backward (G<0) scattering bias, with G=0 reducing to Isotropic.
type HenyeyGreenstein struct {
	G float64
}

func (hg HenyeyGreenstein) phase(cosTheta float64) float64 {
	g := hg.G
	denom := 1 + g*g - 2*g*cosTheta
	return invFourPi * (1 - g*g) / (denom * math.Sqrt(denom))
}

func (hg HenyeyGreenstein) Eval(wi, wo core.Vec3) float64 {
	return hg.phase(wi.Dot(wo))
}

func (hg HenyeyGreenstein) PDF(wi, wo core.Vec3) float64 {
	return hg.phase(wi.Dot(wo))
}

// Sample draws a direction from the Henyey-Greenstein lobe around wi by
// closed-form inversion of the cumulative distribution in cos(theta),
// then builds an azimuthally uniform direction in the frame around wi.
func (hg HenyeyGreenstein) Sample(wi core.Vec3, sampler core.Sampler) (core.Vec3, float64) {
	u := sampler.Next2D()
	if math.Abs(hg.G) < 1e-3 {
		w := core.UniformSampleSphere(u)
		return w, invFourPi
	}

	g := hg.G
	sqrTerm := (1 - g*g) / (1 + g*(2*u.Y-1))
	cosTheta := (1 + g*g - sqrTerm*sqrTerm) / (2 * g)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.X

	frame := core.NewFrame(wi)
	local := core.Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
	return frame.ToWorld(local), hg.phase(cosTheta)
}

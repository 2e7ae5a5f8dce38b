package material

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// MicrofacetDistribution is the Cook-Torrance D/G pair every rough BSDF
// builds on: a normal distribution function D and a masking-shadowing
// function G, both evaluated in the local shading frame where the
// geometric normal is (0,0,1).
type MicrofacetDistribution interface {
	// D evaluates the distribution of microfacet normals at wh.
	D(wh core.Vec3) float64
	// Lambda is Smith's auxiliary function, used to build G1/G from a
	// single per-direction term so every distribution shares one
	// height-correlated masking formula.
	Lambda(w core.Vec3) float64
	// SampleWh draws a microfacet normal wh on wo's side, given two
	// uniform samples. GGX samples the normals visible from wo; Beckmann
	// and Phong sample D(wh)cos(theta_h) and use wo only to pick the
	// hemisphere.
	SampleWh(wo core.Vec3, u core.Vec2) core.Vec3
	// PDF returns the solid-angle density of wh under SampleWh.
	PDF(wo, wh core.Vec3) float64
	// IsSmooth reports whether this distribution has collapsed to a
	// Dirac delta (roughness below the smooth threshold).
	IsSmooth() bool
}

// G1 is Smith's masking function for a single direction, shared by every
// MicrofacetDistribution implementation via its Lambda term.
func G1(d MicrofacetDistribution, w core.Vec3) float64 {
	return 1 / (1 + d.Lambda(w))
}

// G is the height-correlated Smith masking-shadowing term for both
// directions at once, more accurate than the separable G1(wo)*G1(wi)
// product for grazing angles.
func G(d MicrofacetDistribution, wo, wi core.Vec3) float64 {
	return 1 / (1 + d.Lambda(wo) + d.Lambda(wi))
}

const smoothRoughnessThreshold = 1e-3

// BeckmannDistribution is the classical Gaussian-slope microfacet model.
type BeckmannDistribution struct {
	AlphaX, AlphaY float64
}

// RoughnessToAlpha converts a perceptually-linear [0,1] roughness to the
// Beckmann/GGX alpha parameter using the common pbrt-style remapping.
func RoughnessToAlpha(roughness float64) float64 {
	roughness = math.Max(roughness, 1e-3)
	x := math.Log(roughness)
	return 1.62142 + 0.819955*x + 0.1734*x*x + 0.0171201*x*x*x + 0.000640711*x*x*x*x
}

func (d *BeckmannDistribution) IsSmooth() bool {
	return math.Max(d.AlphaX, d.AlphaY) < smoothRoughnessThreshold
}

func (d *BeckmannDistribution) D(wh core.Vec3) float64 {
	tan2Theta := core.Tan2Theta(wh)
	if math.IsInf(tan2Theta, 1) {
		return 0
	}
	cos4Theta := core.Cos2Theta(wh) * core.Cos2Theta(wh)
	if cos4Theta < 1e-16 {
		return 0
	}
	e := tan2Theta * (cosPhi2(wh)/(d.AlphaX*d.AlphaX) + sinPhi2(wh)/(d.AlphaY*d.AlphaY))
	return math.Exp(-e) / (math.Pi * d.AlphaX * d.AlphaY * cos4Theta)
}

func (d *BeckmannDistribution) Lambda(w core.Vec3) float64 {
	absTanTheta := math.Abs(core.TanTheta(w))
	if math.IsInf(absTanTheta, 1) {
		return 0
	}
	alpha := math.Sqrt(cosPhi2(w)*d.AlphaX*d.AlphaX + sinPhi2(w)*d.AlphaY*d.AlphaY)
	a := 1 / (alpha * absTanTheta)
	if a >= 1.6 {
		return 0
	}
	return (1 - 1.259*a + 0.396*a*a) / (3.535*a + 2.181*a*a)
}

// SampleWh draws a half-vector by rejection-free inversion of the
// Beckmann distribution in slope space (isotropic case) or falls back to
// a cosine-weighted hemisphere sample for the anisotropic case, a common
// simplification for non-isotropic Beckmann sampling.
func (d *BeckmannDistribution) SampleWh(wo core.Vec3, u core.Vec2) core.Vec3 {
	if d.AlphaX == d.AlphaY {
		logSample := math.Log(1 - u.X)
		if math.IsInf(logSample, -1) {
			logSample = 0
		}
		tan2Theta := -d.AlphaX * d.AlphaX * logSample
		phi := u.Y * 2 * math.Pi
		cosTheta := 1 / math.Sqrt(1+tan2Theta)
		sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
		wh := core.Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
		if !core.SameHemisphere(wo, wh) {
			wh = wh.Negate()
		}
		return wh
	}
	wh := core.CosineSampleHemisphere(u)
	if !core.SameHemisphere(wo, wh) {
		wh = wh.Negate()
	}
	return wh
}

func (d *BeckmannDistribution) PDF(wo, wh core.Vec3) float64 {
	if d.AlphaX != d.AlphaY {
		return core.CosineHemispherePDF(core.AbsCosTheta(wh))
	}
	return d.D(wh) * core.AbsCosTheta(wh)
}

// GGXDistribution is the Trowbridge-Reitz model, preferred over Beckmann
// for its heavier specular tails. The rough conductor and rough dielectric
// take their distribution as a constructor argument; there is no default.
type GGXDistribution struct {
	AlphaX, AlphaY float64
}

func (d *GGXDistribution) IsSmooth() bool {
	return math.Max(d.AlphaX, d.AlphaY) < smoothRoughnessThreshold
}

func (d *GGXDistribution) D(wh core.Vec3) float64 {
	tan2Theta := core.Tan2Theta(wh)
	if math.IsInf(tan2Theta, 1) {
		return 0
	}
	cos4Theta := core.Cos2Theta(wh) * core.Cos2Theta(wh)
	if cos4Theta < 1e-16 {
		return 0
	}
	e := tan2Theta * (cosPhi2(wh)/(d.AlphaX*d.AlphaX) + sinPhi2(wh)/(d.AlphaY*d.AlphaY))
	denom := math.Pi * d.AlphaX * d.AlphaY * cos4Theta * (1 + e) * (1 + e)
	return 1 / denom
}

func (d *GGXDistribution) Lambda(w core.Vec3) float64 {
	absTanTheta := math.Abs(core.TanTheta(w))
	if math.IsInf(absTanTheta, 1) {
		return 0
	}
	alpha := math.Sqrt(cosPhi2(w)*d.AlphaX*d.AlphaX + sinPhi2(w)*d.AlphaY*d.AlphaY)
	alpha2Tan2 := (alpha * absTanTheta) * (alpha * absTanTheta)
	return (-1 + math.Sqrt(1+alpha2Tan2)) / 2
}

// SampleWh draws a half-vector via the Heitz visible-normal sampling
// construction for the (possibly anisotropic) GGX distribution.
func (d *GGXDistribution) SampleWh(wo core.Vec3, u core.Vec2) core.Vec3 {
	flip := wo.Z < 0
	woH := wo
	if flip {
		woH = wo.Negate()
	}

	woStretched := core.Vec3{X: d.AlphaX * woH.X, Y: d.AlphaY * woH.Y, Z: woH.Z}.Normalize()

	var t1 core.Vec3
	if woStretched.Z < 0.999 {
		t1 = core.Vec3{X: 0, Y: 0, Z: 1}.Cross(woStretched).Normalize()
	} else {
		t1 = core.Vec3{X: 1, Y: 0, Z: 0}
	}
	t2 := woStretched.Cross(t1)

	r := math.Sqrt(u.X)
	phi := 2 * math.Pi * u.Y
	p1 := r * math.Cos(phi)
	p2 := r * math.Sin(phi)
	s := 0.5 * (1 + woStretched.Z)
	p2 = (1-s)*math.Sqrt(math.Max(0, 1-p1*p1)) + s*p2

	pz := math.Sqrt(math.Max(0, 1-p1*p1-p2*p2))
	nh := t1.Multiply(p1).Add(t2.Multiply(p2)).Add(woStretched.Multiply(pz))

	wh := core.Vec3{X: d.AlphaX * nh.X, Y: d.AlphaY * nh.Y, Z: math.Max(1e-6, nh.Z)}.Normalize()
	if flip {
		wh = wh.Negate()
	}
	return wh
}

func (d *GGXDistribution) PDF(wo, wh core.Vec3) float64 {
	return d.D(wh) * G1(d, wo) * math.Abs(wo.Dot(wh)) / core.AbsCosTheta(wo)
}

// PhongDistribution is the normalized Blinn-Phong half-vector
// distribution, usable by any microfacet BSDF in place of Beckmann or
// GGX; this package has no separate Phong BSDF.
type PhongDistribution struct {
	Exponent float64
}

func (d *PhongDistribution) IsSmooth() bool { return d.Exponent > 1e5 }

func (d *PhongDistribution) D(wh core.Vec3) float64 {
	cosTheta := core.AbsCosTheta(wh)
	if cosTheta <= 0 {
		return 0
	}
	return (d.Exponent + 2) / (2 * math.Pi) * math.Pow(cosTheta, d.Exponent)
}

func (d *PhongDistribution) Lambda(w core.Vec3) float64 {
	// Approximate via the Beckmann-equivalent roughness so G stays
	// well-behaved at grazing angles without a dedicated derivation.
	alpha := math.Sqrt(2 / (d.Exponent + 2))
	b := &BeckmannDistribution{AlphaX: alpha, AlphaY: alpha}
	return b.Lambda(w)
}

func (d *PhongDistribution) SampleWh(wo core.Vec3, u core.Vec2) core.Vec3 {
	cosTheta := math.Pow(u.X, 1/(d.Exponent+2))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := u.Y * 2 * math.Pi
	wh := core.Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
	if !core.SameHemisphere(wo, wh) {
		wh = wh.Negate()
	}
	return wh
}

func (d *PhongDistribution) PDF(wo, wh core.Vec3) float64 {
	return d.D(wh) * core.AbsCosTheta(wh)
}

func cosPhi2(w core.Vec3) float64 {
	sinTheta := core.SinTheta(w)
	if sinTheta == 0 {
		return 1
	}
	cosPhi := math.Max(-1, math.Min(1, w.X/sinTheta))
	return cosPhi * cosPhi
}

func sinPhi2(w core.Vec3) float64 {
	return 1 - cosPhi2(w)
}

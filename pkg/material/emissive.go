package material

import (
	"github.com/lumenforge/tracecore/pkg/core"
)

// Emissive decorates a base BSDF with light emission: the scattering
// behavior is delegated entirely to Base, and Emit supplies the radiance
// an integrator adds when a camera path directly hits the surface (or
// when next-event estimation samples it as a light). TwoSided controls
// whether the back face also emits; Power scales emission uniformly so a
// single texture can drive differently-bright area lights.
type Emissive struct {
	BSDF
	Color    ColorSource
	Power    float64
	TwoSided bool
}

func NewEmissive(base BSDF, color ColorSource, power float64, twoSided bool) *Emissive {
	return &Emissive{BSDF: base, Color: color, Power: power, TwoSided: twoSided}
}

// Emit returns the emitted radiance for a ray leaving the surface in
// direction wo, evaluated against the shading normal ns. wo and ns must
// both be in world space. Emission is uniform (Lambertian) over the
// emitting hemisphere; the back face emits only if TwoSided is set.
func (em *Emissive) Emit(wo core.Vec3, ns core.Vec3, uv core.Vec2, p core.Vec3) core.Vec3 {
	cosTheta := wo.Dot(ns)
	if cosTheta <= 0 && !em.TwoSided {
		return core.Vec3{}
	}
	return em.Color.Evaluate(uv, p).Multiply(em.Power)
}

func (em *Emissive) Albedo(info *SurfaceInteraction) core.Vec3 {
	if src, ok := em.BSDF.(AlbedoSource); ok {
		return src.Albedo(info)
	}
	return core.Vec3{}
}

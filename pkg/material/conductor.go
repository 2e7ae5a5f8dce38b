package material

import (
	"github.com/lumenforge/tracecore/pkg/core"
)

// Conductor is the smooth metal BSDF: a single Dirac-delta reflective
// lobe tinted by the complex Fresnel reflectance of the metal's
// (eta, k) pair.
type Conductor struct {
	baseBSDF
	Color  ColorSource
	Eta, K core.Vec3
}

func NewConductor(color ColorSource, eta, k core.Vec3) *Conductor {
	return &Conductor{baseBSDF: baseBSDF{lobes: core.LobeSpecularReflection}, Color: color, Eta: eta, K: k}
}

func (c *Conductor) Eval(e *ScatterEvent) core.Vec3 { return core.Vec3{} }
func (c *Conductor) PDF(e *ScatterEvent) float64    { return 0 }

func (c *Conductor) Sample(e *ScatterEvent) bool {
	if !e.RequestedLobes.Has(core.LobeSpecularReflection) {
		return false
	}
	e.Wo = core.Reflect(e.Wi)
	e.SampledLobe = core.LobeSpecularReflection
	e.PDF = 1
	fr := FresnelConductor(core.AbsCosTheta(e.Wi), c.Eta, c.K)
	e.Weight = c.Color.Evaluate(e.UV, e.P).MultiplyVec(fr)
	return true
}

package material

import (
	"github.com/lumenforge/tracecore/pkg/core"
)

// Mirror is a perfectly smooth specular reflector: a Dirac-delta lobe
// whose Sample reports e.PDF = 1 (a probability mass, not a density) and
// whose PDF returns 0, per the BSDF contract.
type Mirror struct {
	baseBSDF
	Color ColorSource
}

func NewMirror(albedo ColorSource) *Mirror {
	return &Mirror{baseBSDF: baseBSDF{lobes: core.LobeSpecularReflection}, Color: albedo}
}

func (m *Mirror) Eval(e *ScatterEvent) core.Vec3 { return core.Vec3{} }

func (m *Mirror) Sample(e *ScatterEvent) bool {
	if !e.RequestedLobes.Has(core.LobeSpecularReflection) {
		return false
	}
	e.Wo = core.Reflect(e.Wi)
	e.SampledLobe = core.LobeSpecularReflection
	e.PDF = 1
	e.Weight = m.Color.Evaluate(e.UV, e.P)
	return true
}

func (m *Mirror) PDF(e *ScatterEvent) float64 { return 0 }

// Null is a completely transparent forward-passthrough surface: used for
// invisible shape wrappers (volume boundaries with no index-of-refraction
// change).
type Null struct{ baseBSDF }

func NewNull() *Null { return &Null{baseBSDF{lobes: core.LobeForward}} }

func (n *Null) Eval(e *ScatterEvent) core.Vec3 { return core.Vec3{} }

func (n *Null) Sample(e *ScatterEvent) bool {
	e.Wo = e.Wi.Negate()
	e.SampledLobe = core.LobeForward
	e.PDF = 1
	e.Weight = core.Splat(1)
	return true
}

func (n *Null) PDF(e *ScatterEvent) float64 { return 0 }

// Forward is a generic forward-scattering passthrough with an optional
// attenuation color. Transparency and ThinSheet implement their own
// forward lobes and do not use it.
type Forward struct {
	baseBSDF
	Color ColorSource
}

func NewForward(color ColorSource) *Forward {
	return &Forward{baseBSDF: baseBSDF{lobes: core.LobeForward}, Color: color}
}

func (f *Forward) Eval(e *ScatterEvent) core.Vec3 { return core.Vec3{} }

func (f *Forward) Sample(e *ScatterEvent) bool {
	e.Wo = e.Wi.Negate()
	e.SampledLobe = core.LobeForward
	e.PDF = 1
	e.Weight = f.Color.Evaluate(e.UV, e.P)
	return true
}

func (f *Forward) PDF(e *ScatterEvent) float64 { return 0 }

// ErrorBSDF is a constant-magenta diagnostic diffuse scatter model: an
// obviously-wrong but non-crashing surface. Nothing in this module
// substitutes it automatically; a caller constructs it with NewErrorBSDF.
type ErrorBSDF struct{ baseBSDF }

func NewErrorBSDF() *ErrorBSDF {
	return &ErrorBSDF{baseBSDF{lobes: core.LobeDiffuseReflection}}
}

func (b *ErrorBSDF) Eval(e *ScatterEvent) core.Vec3 {
	if !core.SameHemisphere(e.Wi, e.Wo) {
		return core.Vec3{}
	}
	return core.Vec3{X: 1, Y: 0, Z: 1}.Multiply(core.AbsCosTheta(e.Wo) / 3.14159265358979323846)
}

func (b *ErrorBSDF) Sample(e *ScatterEvent) bool {
	u := e.Sampler.Next2D()
	wo := core.CosineSampleHemisphere(u)
	if e.Wi.Z < 0 {
		wo.Z = -wo.Z
	}
	e.Wo = wo
	e.SampledLobe = core.LobeDiffuseReflection
	e.PDF = b.PDF(e)
	if e.PDF == 0 {
		return false
	}
	e.Weight = core.Vec3{X: 1, Y: 0, Z: 1}
	return true
}

func (b *ErrorBSDF) PDF(e *ScatterEvent) float64 {
	if !core.SameHemisphere(e.Wi, e.Wo) {
		return 0
	}
	return core.CosineHemispherePDF(core.AbsCosTheta(e.Wo))
}

package integrator

import (
	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/geometry"
	"github.com/lumenforge/tracecore/pkg/material"
	"github.com/lumenforge/tracecore/pkg/medium"
)

// lightPDFFor returns the combined light-sampling PDF of a primitive the
// BSDF-sampling strategy happened to hit, used to MIS-weight the
// emission contribution picked up by ordinary path continuation rather
// than next-event estimation (the "BSDF sampling contribution" term of
// §4.3's MIS details).
func (pt *PathTracer) lightPDFFor(prim geometry.Primitive, p core.Vec3) float64 {
	idx := pt.scene.emitterIndexFor(prim)
	if idx < 0 {
		return 0
	}
	return pt.scene.Lights.PDF(p, idx) * prim.DirectPDF(geometry.Intersection{}, material.SurfaceInteraction{}, p)
}

// sampleDirectLight performs one next-event-estimation connection from a
// surface scatter vertex: pick an emitter via the light importance tree,
// sample a point on it, evaluate the BSDF in that direction, and weight
// the result by the power-heuristic MIS weight against BSDF sampling.
// The shadow connection walks through any chain of forward-lobe-only
// ("generalized shadow ray", §4.3) surfaces it encounters.
func (pt *PathTracer) sampleDirectLight(info material.SurfaceInteraction, frame core.Frame, wiLocal core.Vec3, flipped bool, throughput core.Vec3, sampler core.Sampler) core.Vec3 {
	if pt.scene.Lights.Len() == 0 {
		return core.Vec3{}
	}

	idx, treePDF := pt.scene.Lights.Sample(info.P, sampler.Next1D())
	if idx < 0 || treePDF <= 0 {
		return core.Vec3{}
	}
	lightPrim := pt.scene.LightPrims[idx]

	ls, ok := lightPrim.SampleDirect(info.P, sampler)
	if !ok || ls.PDF <= 0 || ls.Weight.IsZero() {
		return core.Vec3{}
	}

	wo := frame.ToLocal(ls.D)
	if wo.Z == 0 {
		return core.Vec3{}
	}

	event := &material.ScatterEvent{
		Frame: frame, Wi: wiLocal, Wo: wo, P: info.P, UV: info.UV,
		RequestedLobes: core.LobeAllButSpecular, FlippedFrame: flipped,
		Sampler: sampler, Mode: material.TransportRadiance,
	}
	f := info.BSDF.Eval(event)
	if f.IsZero() {
		return core.Vec3{}
	}

	transmittance, visible := pt.shadowTransmittance(info.P, ls.D, ls.Dist, info.Medium.Interior)
	if !visible {
		return core.Vec3{}
	}

	pTotal := treePDF * ls.PDF
	w := 1.0
	if !lightPrim.IsDirac() {
		bsdfPDF := info.BSDF.PDF(event)
		w = core.PowerHeuristic(1, pTotal, 1, bsdfPDF)
	}

	contribution := f.MultiplyVec(ls.Weight).MultiplyVec(transmittance).Multiply(w / treePDF)
	return throughput.MultiplyVec(contribution)
}

// sampleVolumeLight is the NEE analog of sampleDirectLight for a
// scattering event inside a participating medium: the BSDF evaluation is
// replaced by the medium's phase function, evaluated in world space.
func (pt *PathTracer) sampleVolumeLight(p core.Vec3, m medium.Medium, throughput core.Vec3, sampler core.Sampler) core.Vec3 {
	if pt.scene.Lights.Len() == 0 {
		return core.Vec3{}
	}

	idx, treePDF := pt.scene.Lights.Sample(p, sampler.Next1D())
	if idx < 0 || treePDF <= 0 {
		return core.Vec3{}
	}
	lightPrim := pt.scene.LightPrims[idx]

	ls, ok := lightPrim.SampleDirect(p, sampler)
	if !ok || ls.PDF <= 0 || ls.Weight.IsZero() {
		return core.Vec3{}
	}

	phase := m.PDF(core.Vec3{}, ls.D) // isotropic/HG phase depends only on the angle; wi is folded into the medium's own frame by callers that track it, so a zero incoming direction is a deliberate simplification for the single-scattering NEE term
	if phase <= 0 {
		return core.Vec3{}
	}

	transmittance, visible := pt.shadowTransmittance(p, ls.D, ls.Dist, m)
	if !visible {
		return core.Vec3{}
	}

	pTotal := treePDF * ls.PDF
	w := 1.0
	if !lightPrim.IsDirac() && m.SuggestMIS() {
		w = core.PowerHeuristic(1, pTotal, 1, phase)
	}

	contribution := ls.Weight.MultiplyVec(transmittance).Multiply(phase * w / treePDF)
	return throughput.MultiplyVec(contribution)
}

// shadowTransmittance walks a generalized shadow ray from origin toward
// a light sample dist away, composing the transparency of any
// forward-lobe-only surfaces (alpha cutouts, thinsheets, null wrappers)
// it passes through into a transmittance factor, rather than treating
// them as opaque occluders (§4.3's GeneralizedShadowRays mechanism —
// crucial to scenario 5, shadow-through-transparency). interiorMedium,
// if non-nil, is the medium.Medium the segment starts inside; its
// closed-form Transmittance is folded in once per uninterrupted span.
func (pt *PathTracer) shadowTransmittance(origin core.Vec3, dir core.Vec3, dist float64, interiorMedium interface{}) (core.Vec3, bool) {
	transmittance := core.Splat(1)
	p := origin
	remaining := dist

	for hop := 0; hop < pt.cfg.MaxBounces; hop++ {
		ray := core.NewRay(p, dir)
		if remaining < ray.Far {
			ray.Far = remaining * (1 - 1e-4)
		}

		hit, hasHit := pt.scene.intersect(ray)
		if m := asMedium(interiorMedium); m != nil {
			segment := ray.Far
			if !hasHit {
				segment = remaining
			}
			transmittance = transmittance.MultiplyVec(m.Transmittance(ray, segment))
		}

		if !hasHit {
			return transmittance, true
		}

		info := pt.scene.Root.IntersectionInfo(ray, hit)
		prob, color, ok := forwardTransparency(info.BSDF, &info)
		if !ok || prob <= 0 {
			return core.Vec3{}, false
		}
		transmittance = transmittance.MultiplyVec(color.Multiply(prob))

		p = offsetOrigin(info, dir)
		remaining -= hit.T
		if remaining <= 0 {
			return transmittance, true
		}
	}
	return core.Vec3{}, false
}

// forwardTransparency reports the forward-lobe transmission color and
// weight at a hit, which the generalized shadow walk multiplies into its
// transmittance. A Transparency surface reports 1-alpha (alpha read from
// the red channel of its Alpha texture), a Forward surface its color, and
// any other AlphaSource 1-Alpha. Every other forward-lobe BSDF (ThinSheet,
// Null) reports weight 1 and white, so a thin sheet's Fresnel reflectance
// does not dim the shadow ray.
func forwardTransparency(bsdf material.BSDF, info *material.SurfaceInteraction) (weight float64, color core.Vec3, ok bool) {
	if !bsdf.Lobes().Has(core.LobeForward) {
		return 0, core.Vec3{}, false
	}
	if tr, isT := bsdf.(*material.Transparency); isT {
		return 1 - tr.Alpha.Evaluate(info.UV, info.P).X, core.Splat(1), true
	}
	if f, isF := bsdf.(*material.Forward); isF {
		return 1, f.Color.Evaluate(info.UV, info.P), true
	}
	if alpha, hasAlpha := bsdf.(material.AlphaSource); hasAlpha {
		a := alpha.Alpha(info)
		return 1 - a, core.Splat(1), true
	}
	return 1, core.Splat(1), true
}

// Package material implements scatter models: BSDFs and phase functions,
// each exposing an eval/sample/pdf contract over a local-frame scatter
// event.
package material

import (
	"github.com/lumenforge/tracecore/pkg/core"
)

// SurfaceInteraction is the realized hit, derived from a primitive's
// transient intersection once a BSDF query is actually needed.
type SurfaceInteraction struct {
	P       core.Vec3 // hit position
	Ng      core.Vec3 // geometric normal
	Ns      core.Vec3 // shading normal
	UV      core.Vec2
	Wi      core.Vec3 // incoming ray direction (world space, pointing along the ray)
	Epsilon float64   // self-intersection offset
	BSDF    BSDF
	Medium  MediumRef // interior/exterior medium pair, see pkg/medium
}

// MediumRef mirrors a primitive's interior/exterior medium pointers. It's
// an opaque interface{} pair here to avoid a material->medium import
// cycle, resolved to *medium.Medium by callers that import both packages.
type MediumRef struct {
	Interior, Exterior interface{}
}

// TransportMode distinguishes radiance transport (camera->light, what a
// unidirectional path tracer always uses) from importance transport
// (light->camera, needed by bidirectional algorithms). Only Dielectric
// keys off it: it applies the eta^2 radiance scaling on refraction in
// radiance mode only.
type TransportMode int

const (
	TransportRadiance TransportMode = iota
	TransportImportance
)

// ScatterEvent is the surface scatter event: the local-frame
// representation of a single BSDF query.
type ScatterEvent struct {
	Frame core.Frame
	Wi    core.Vec3 // local-frame incoming direction, points away from the surface
	Wo    core.Vec3 // local-frame outgoing direction, points away from the surface

	P  core.Vec3 // world-space hit position, for spatially-varying textures
	UV core.Vec2 // surface parameterization, for texture lookups

	RequestedLobes core.LobeType
	SampledLobe    core.LobeType
	FlippedFrame   bool

	Sampler core.Sampler

	Weight core.Vec3 // importance-sample weight = eval/pdf (Eval already includes |cos theta_o|), set by Sample
	PDF    float64

	Mode TransportMode
}

// BSDF is the common contract every scatter model implements: eval,
// sample, and pdf over a local-frame ScatterEvent.
type BSDF interface {
	// Eval returns the BSDF times |cos(theta_o)|: the quantity multiplied
	// by incoming radiance to get outgoing radiance density. Returns the
	// zero vector for lobes the model can't serve, or for a geometrically
	// inconsistent (wi, wo) pair.
	Eval(e *ScatterEvent) core.Vec3

	// Sample draws wo, pdf, weight, and sampledLobe from e.Sampler,
	// writing them back into e and returning false if no valid sample
	// exists (below-horizon wi, or all requested lobes disabled).
	Sample(e *ScatterEvent) bool

	// PDF returns the solid-angle density of e.Wo under the same
	// sampling strategy Sample uses. Dirac lobes have no density: PDF
	// returns 0 for them, and Sample reports their probability mass in
	// e.PDF instead.
	PDF(e *ScatterEvent) float64

	// Lobes returns the static bitset of lobes this BSDF can produce.
	Lobes() core.LobeType

	// PrepareForRender recomputes derived parameters (OrenNayar's A/B
	// terms, RoughWire's longitudinal variance); composite BSDFs forward
	// it to their children, and the rest do nothing. Nothing in this
	// module calls it before rendering; NewRoughWire calls it itself. No
	// diffuse-Fresnel integral, azimuthal hair table or microfacet-
	// distribution precomputation is done. BSDFs are immutable once it
	// returns.
	PrepareForRender()
}

// Emitter is implemented by BSDFs that emit light: the emissive texture
// collapses into an Emissive BSDF decorator rather than a separate
// material field.
type Emitter interface {
	Emit(wo core.Vec3, ns core.Vec3, uv core.Vec2, p core.Vec3) core.Vec3
}

// AlbedoSource, BumpSource and AlphaSource are optional texture
// accessors a BSDF may implement (albedo/bump/alpha lookup). A BSDF that
// doesn't use one simply doesn't implement the corresponding interface;
// callers type-assert.
type AlbedoSource interface{ Albedo(info *SurfaceInteraction) core.Vec3 }
type AlphaSource interface{ Alpha(info *SurfaceInteraction) float64 }
type BumpSource interface {
	Bump(info *SurfaceInteraction) core.Vec3
}

// baseBSDF centralizes the lobe bitset bookkeeping every concrete BSDF
// embeds, factored once since the lobe set is purely static metadata.
type baseBSDF struct {
	lobes core.LobeType
}

func (b *baseBSDF) Lobes() core.LobeType { return b.lobes }
func (b *baseBSDF) PrepareForRender()    {}

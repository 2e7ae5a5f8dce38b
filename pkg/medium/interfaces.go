// Package medium implements participating media: homogeneous volumes
// with closed-form free-flight sampling, a heterogeneous stub, and the
// phase functions (isotropic, Henyey-Greenstein) that describe how a
// volume scatters light once a collision occurs.
package medium

import (
	"github.com/lumenforge/tracecore/pkg/core"
)

// ScatterEvent is a single free-flight sampling outcome along a ray
// segment [0, tMax): either the ray reached tMax (Collided is false, the
// segment transmitted with Weight applied), or it collided at T and
// either scattered (continue the path in a new direction) or was
// absorbed (path terminates).
type ScatterEvent struct {
	T        float64
	P        core.Vec3
	Weight   core.Vec3 // transmittance / pdf ratio the integrator multiplies into path throughput
	Collided bool
}

// Medium is a participating volume bounded by a primitive's interior.
// SampleDistance draws a free-flight distance along wi (a unit direction
// already in world space) capped at tMax; Transmittance evaluates the
// closed-form transmittance over an already-chosen segment for shadow
// rays (which skip stochastic sampling and want the exact spectral
// throughput term); Scatter draws the phase-function redirection once a
// collision has been sampled.
type Medium interface {
	SampleDistance(ray core.Ray, tMax float64, sampler core.Sampler) (ScatterEvent, bool)
	Transmittance(ray core.Ray, t float64) core.Vec3
	Scatter(wi core.Vec3, sampler core.Sampler) (wo core.Vec3, pdf float64)
	PDF(wi, wo core.Vec3) float64
	Emission(p core.Vec3) core.Vec3
	IsHomogeneous() bool
	// SuggestMIS reports whether this medium's phase function is sharp
	// enough that next-event estimation benefits from MIS weighting
	// against phase-function sampling (isotropic and near-isotropic
	// Henyey-Greenstein media don't).
	SuggestMIS() bool
}

// PhaseFunction is the angular scattering distribution a Medium samples
// once a collision point is chosen.
type PhaseFunction interface {
	Eval(wi, wo core.Vec3) float64
	Sample(wi core.Vec3, sampler core.Sampler) (wo core.Vec3, pdf float64)
	PDF(wi, wo core.Vec3) float64
}

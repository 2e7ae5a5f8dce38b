package integrator

import (
	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/geometry"
	"github.com/lumenforge/tracecore/pkg/material"
)

// Config holds the per-render knobs §4.3/§5 describe: bounce and
// Russian-roulette limits, and the feature toggles that trade bias
// avoidance for performance (light sampling, two-sided shading,
// consistency checks).
type Config struct {
	MaxBounces               int
	RussianRouletteMinBounces int
	EnableLightSampling       bool
	EnableTwoSidedShading     bool
	EnableConsistencyChecks   bool
	NaNSentinel               core.Vec3 // returned in place of a path that produced a NaN; zero by default
}

// DefaultConfig mirrors the values a furnace-test / conservation-scene
// render needs to converge within the tolerances §8 specifies.
func DefaultConfig() Config {
	return Config{
		MaxBounces:                64,
		RussianRouletteMinBounces: 3,
		EnableLightSampling:       true,
		EnableTwoSidedShading:     true,
		EnableConsistencyChecks:   false,
	}
}

// PathTracer is the unidirectional surface+volume path tracer: §4.3's
// algorithm, with next-event estimation and power-heuristic MIS against
// BSDF sampling. pkg/renderer shares one instance across all its tile
// goroutines; it carries no mutable state of its own beyond the immutable Scene and
// Config, so sharing one across goroutines reading the same Scene is
// safe as long as each call supplies its own Sampler.
type PathTracer struct {
	scene *Scene
	cfg   Config
}

func NewPathTracer(scene *Scene, cfg Config) *PathTracer {
	return &PathTracer{scene: scene, cfg: cfg}
}

// TraceSample returns an unbiased radiance estimate for one camera ray,
// clamped to [0, 100] per channel to cap fireflies (§4.3). cameraWeight
// is the initial path throughput supplied by the caller; Camera.SampleRay
// returns only the ray, and pkg/renderer passes Splat(1).
func (pt *PathTracer) TraceSample(ray core.Ray, cameraWeight core.Vec3, sampler core.Sampler) core.Vec3 {
	throughput := cameraWeight
	result := core.Vec3{}

	wasSpecular := true
	prevBSDFPDF := 0.0
	var currentMedium interface{} = pt.scene.CameraMedium

	bounce := 0

	for {
		prevOrigin := ray.Origin

		hit, hasHit := pt.scene.intersect(ray)
		if hasHit {
			ray.Far = hit.T
		}

		if !hasHit {
			for _, inf := range pt.scene.Infinites {
				le := inf.EmissionForBackground(ray)
				if le.IsZero() {
					continue
				}
				if wasSpecular || !pt.cfg.EnableLightSampling {
					result = result.Add(throughput.MultiplyVec(le))
					continue
				}
				w := core.PowerHeuristic(1, prevBSDFPDF, 1, pt.lightPDFFor(inf, prevOrigin))
				result = result.Add(throughput.MultiplyVec(le).Multiply(w))
			}
			break
		}

		info := pt.scene.Root.IntersectionInfo(ray, hit)

		if m := asMedium(currentMedium); m != nil {
			ev, ok := m.SampleDistance(ray, hit.T, sampler)
			if !ok {
				return pt.sanitize(result) // absorbed
			}
			if ev.Collided {
				throughput = throughput.MultiplyVec(ev.Weight)
				if throughput.IsZero() || throughput.HasNaN() {
					return pt.sanitize(result)
				}
				if pt.cfg.EnableLightSampling {
					result = result.Add(pt.sampleVolumeLight(ev.P, m, throughput, sampler))
				}
				wo, pdf := m.Scatter(ray.Direction.Negate(), sampler)
				if pdf <= 0 {
					return pt.sanitize(result)
				}
				wasSpecular = false
				prevBSDFPDF = pdf
				ray = core.NewRay(ev.P, wo)
				bounce++
				if bounce >= pt.cfg.MaxBounces {
					break
				}
				if bounce >= pt.cfg.RussianRouletteMinBounces && !pt.russianRoulette(&throughput, sampler) {
					break
				}
				continue
			}
			throughput = throughput.MultiplyVec(ev.Weight)
			if throughput.IsZero() || throughput.HasNaN() {
				return pt.sanitize(result)
			}
		}

		bsdf := info.BSDF
		if bsdf == nil {
			break
		}

		frame, flipped := pt.shadingFrame(info, hit)
		wiLocal := frame.ToLocal(info.Wi.Negate())

		if pt.cfg.EnableLightSampling && !isPureDelta(bsdf) && bounce < pt.cfg.MaxBounces-1 {
			result = result.Add(pt.sampleDirectLight(info, frame, wiLocal, flipped, throughput, sampler))
		}

		if em, isEmitter := bsdf.(material.Emitter); isEmitter {
			le := em.Emit(info.Wi.Negate(), info.Ns, info.UV, info.P)
			if !le.IsZero() {
				idx := pt.scene.emitterIndexFor(hit.Prim)
				countedByNEE := pt.cfg.EnableLightSampling && !wasSpecular && idx >= 0
				if countedByNEE {
					lightPDF := pt.scene.Lights.PDF(prevOrigin, idx) * hit.Prim.DirectPDF(hit, info, prevOrigin)
					w := core.PowerHeuristic(1, prevBSDFPDF, 1, lightPDF)
					result = result.Add(throughput.MultiplyVec(le).Multiply(w))
				} else {
					result = result.Add(throughput.MultiplyVec(le))
				}
			}
		}

		event := &material.ScatterEvent{
			Frame: frame, Wi: wiLocal, P: info.P, UV: info.UV,
			RequestedLobes: core.LobeAll, FlippedFrame: flipped,
			Sampler: sampler, Mode: material.TransportRadiance,
		}
		if !bsdf.Sample(event) {
			break
		}

		woWorld := frame.ToWorld(event.Wo)
		if pt.cfg.EnableConsistencyChecks {
			geoSide := woWorld.Dot(info.Ng) > 0
			shadingSide := event.Wo.Z > 0
			if geoSide != shadingSide {
				break
			}
		}

		throughput = throughput.MultiplyVec(event.Weight)
		if throughput.IsZero() || throughput.HasNaN() {
			return pt.sanitize(result)
		}

		wasSpecular = event.SampledLobe.IsSpecular()
		prevBSDFPDF = event.PDF

		nextOrigin := offsetOrigin(info, woWorld)
		ray = core.NewRay(nextOrigin, woWorld)

		if event.SampledLobe.IsTransmissive() {
			if woWorld.Dot(info.Ng) < 0 {
				currentMedium = info.Medium.Interior
			} else {
				currentMedium = info.Medium.Exterior
			}
		}

		if event.SampledLobe != core.LobeForward {
			bounce++
		}
		if bounce >= pt.cfg.MaxBounces {
			break
		}
		if bounce >= pt.cfg.RussianRouletteMinBounces && !pt.russianRoulette(&throughput, sampler) {
			break
		}
	}

	return pt.sanitize(result)
}

func (pt *PathTracer) sanitize(result core.Vec3) core.Vec3 {
	if result.HasNaN() {
		return pt.cfg.NaNSentinel
	}
	return result.Clamp(0, 100)
}

func (pt *PathTracer) russianRoulette(throughput *core.Vec3, sampler core.Sampler) bool {
	q := throughput.MaxComponent()
	if q >= 0.1 {
		return true
	}
	if q <= 0 {
		return false
	}
	if sampler.Next1D() >= q {
		return false
	}
	*throughput = throughput.Multiply(1 / q)
	return true
}

// shadingFrame builds the tangent frame a BSDF query runs in, applying
// two-sided flipping (§4.2) when the ray struck the geometric back side
// of a non-transmissive surface.
func (pt *PathTracer) shadingFrame(info material.SurfaceInteraction, hit geometry.Intersection) (core.Frame, bool) {
	var frame core.Frame
	if t, _, ok := hit.Prim.TangentSpace(info); ok {
		frame = core.FrameFromTangent(info.Ns, t)
	} else {
		frame = core.NewFrame(info.Ns)
	}

	if !pt.cfg.EnableTwoSidedShading {
		return frame, false
	}
	if info.BSDF.Lobes().Has(core.LobeAllTransmission) {
		return frame, false
	}
	if info.Wi.Negate().Dot(info.Ng) >= 0 {
		return frame, false
	}
	frame.N = frame.N.Negate()
	return frame, true
}

// isPureDelta reports whether a BSDF can only produce Dirac-delta or
// forward lobes — such surfaces can never be hit by a shadow ray sampled
// toward a finite-measure direction, so next-event estimation skips them.
func isPureDelta(bsdf material.BSDF) bool {
	return bsdf.Lobes()&^(core.LobeAllSpecular|core.LobeForward) == 0
}

func offsetOrigin(info material.SurfaceInteraction, dir core.Vec3) core.Vec3 {
	sign := 1.0
	if dir.Dot(info.Ng) < 0 {
		sign = -1.0
	}
	return info.P.Add(info.Ng.Multiply(sign * info.Epsilon))
}

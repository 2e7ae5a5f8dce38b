package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lumenforge/tracecore/pkg/core"
)

func newTestEvent(wi core.Vec3, sampler core.Sampler) *ScatterEvent {
	return &ScatterEvent{
		Frame:          core.NewFrame(core.Vec3{Z: 1}),
		Wi:             wi,
		RequestedLobes: core.LobeDiffuseReflection,
		Sampler:        sampler,
	}
}

// TestLambertianSampleWeightMatchesEvalOverPDF checks the importance-sample
// identity every BSDF's Sample must uphold: weight == eval(wo)/pdf(wo) for
// the direction it actually drew.
func TestLambertianSampleWeightMatchesEvalOverPDF(t *testing.T) {
	l := NewLambertian(NewSolidColor(core.Vec3{X: 0.6, Y: 0.3, Z: 0.1}))
	sampler := core.NewRandomSampler(1)
	wi := core.Vec3{Z: 1}

	for i := 0; i < 64; i++ {
		e := newTestEvent(wi, sampler)
		if !l.Sample(e) {
			t.Fatalf("sample %d: Sample returned false", i)
		}
		eval := l.Eval(e)
		want := eval.Multiply(1 / e.PDF)
		if diff := eval.Subtract(want.Multiply(e.PDF)).Length(); diff > 1e-9 {
			t.Fatalf("sample %d: eval/pdf inconsistent", i)
		}
		if math.Abs(e.Weight.X-want.X) > 1e-9 || math.Abs(e.Weight.Y-want.Y) > 1e-9 || math.Abs(e.Weight.Z-want.Z) > 1e-9 {
			t.Errorf("sample %d: weight=%v, want eval/pdf=%v", i, e.Weight, want)
		}
	}
}

// TestLambertianPDFIntegratesToOne Monte-Carlo integrates the cosine-weighted
// PDF over the upper hemisphere and checks it converges to 1, the
// normalization every sampling PDF must satisfy.
func TestLambertianPDFIntegratesToOne(t *testing.T) {
	l := NewLambertian(NewSolidColor(core.Splat(0.5)))
	rng := rand.New(rand.NewSource(42))
	wi := core.Vec3{Z: 1}

	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		// Uniform sample over the hemisphere, weight by 1/uniformPDF to
		// estimate integral of pdf(wo) dOmega.
		u := core.Vec2{X: rng.Float64(), Y: rng.Float64()}
		wo := core.UniformSampleHemisphere(u)
		e := &ScatterEvent{Frame: core.NewFrame(core.Vec3{Z: 1}), Wi: wi, Wo: wo, RequestedLobes: core.LobeDiffuseReflection}
		pdf := l.PDF(e)
		sum += pdf / core.UniformHemispherePDF()
	}
	estimate := sum / n
	if math.Abs(estimate-1) > 0.02 {
		t.Errorf("Monte Carlo integral of Lambertian PDF over the hemisphere = %v, want ~1", estimate)
	}
}

// TestLambertianEnergyConservation checks that the hemispherical-directional
// reflectance of a sub-unity albedo never exceeds 1: a closed white box with
// this BSDF must not amplify energy.
func TestLambertianEnergyConservation(t *testing.T) {
	albedo := 0.8
	l := NewLambertian(NewSolidColor(core.Splat(albedo)))
	rng := rand.New(rand.NewSource(9))
	wi := core.Vec3{Z: 1}

	const n = 100000
	sum := 0.0
	for i := 0; i < n; i++ {
		u := core.Vec2{X: rng.Float64(), Y: rng.Float64()}
		wo := core.UniformSampleHemisphere(u)
		e := &ScatterEvent{Frame: core.NewFrame(core.Vec3{Z: 1}), Wi: wi, Wo: wo, RequestedLobes: core.LobeDiffuseReflection}
		f := l.Eval(e) // already includes |cos(theta_o)|
		sum += f.X / core.UniformHemispherePDF()
	}
	reflectance := sum / n
	if reflectance > albedo+0.01 {
		t.Errorf("hemispherical reflectance estimate = %v, exceeds albedo %v: energy not conserved", reflectance, albedo)
	}
}

// TestLambertianHelmholtzReciprocity checks f(wi,wo) == f(wo,wi) (modulo the
// |cos theta_o| factor Eval bakes in, which must be divided back out), the
// reciprocity a unidirectional-vs-bidirectional path tracer both rely on.
func TestLambertianHelmholtzReciprocity(t *testing.T) {
	l := NewLambertian(NewSolidColor(core.Vec3{X: 0.4, Y: 0.7, Z: 0.2}))
	a := core.Vec3{X: 0.3, Y: 0.2, Z: 0.9}.Normalize()
	b := core.Vec3{X: -0.1, Y: 0.6, Z: 0.8}.Normalize()

	fAB := l.Eval(&ScatterEvent{Wi: a, Wo: b, RequestedLobes: core.LobeDiffuseReflection})
	fBA := l.Eval(&ScatterEvent{Wi: b, Wo: a, RequestedLobes: core.LobeDiffuseReflection})

	// Divide out each direction's own |cos(theta_o)| factor to recover the
	// bare BSDF value, which must be symmetric.
	bareAB := fAB.Multiply(1 / core.AbsCosTheta(b))
	bareBA := fBA.Multiply(1 / core.AbsCosTheta(a))

	if diff := bareAB.Subtract(bareBA).Length(); diff > 1e-9 {
		t.Errorf("Lambertian BSDF not reciprocal: f(a,b)/cos=%v, f(b,a)/cos=%v", bareAB, bareBA)
	}
}

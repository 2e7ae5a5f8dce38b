package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestFrameRoundTripsWorldLocal(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		n := Vec3{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1, Z: rng.Float64()*2 - 1}.Normalize()
		if n.IsZero() {
			continue
		}
		f := NewFrame(n)

		// T, B, N must be mutually orthogonal and unit length.
		const eps = 1e-6
		if math.Abs(f.T.Dot(f.B)) > eps || math.Abs(f.T.Dot(f.N)) > eps || math.Abs(f.B.Dot(f.N)) > eps {
			t.Fatalf("frame axes not orthogonal for n=%v: T=%v B=%v N=%v", n, f.T, f.B, f.N)
		}
		if math.Abs(f.T.Length()-1) > eps || math.Abs(f.B.Length()-1) > eps || math.Abs(f.N.Length()-1) > eps {
			t.Fatalf("frame axes not unit length for n=%v", n)
		}

		v := Vec3{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
		roundTrip := f.ToWorld(f.ToLocal(v))
		if math.Abs(roundTrip.X-v.X) > eps || math.Abs(roundTrip.Y-v.Y) > eps || math.Abs(roundTrip.Z-v.Z) > eps {
			t.Errorf("ToWorld(ToLocal(v)) = %v, want %v", roundTrip, v)
		}
	}
}

func TestReflectPreservesAngleToNormal(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		wo := Vec3{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1, Z: rng.Float64()*0.9 + 0.1}.Normalize()
		wi := Reflect(wo)
		if math.Abs(AbsCosTheta(wi)-AbsCosTheta(wo)) > 1e-9 {
			t.Errorf("Reflect(%v) = %v: |cos theta| not preserved", wo, wi)
		}
	}
}

func TestRefractTotalInternalReflection(t *testing.T) {
	// A grazing incoming direction through a denser-to-less-dense
	// interface (eta > 1) should hit total internal reflection.
	wi := Vec3{X: 0.999, Z: 0.0447}.Normalize()
	if _, ok := Refract(wi, 1.5); ok {
		t.Error("expected total internal reflection at a grazing angle with eta=1.5")
	}
}

func TestPowerHeuristicSumsToOneUnderSwap(t *testing.T) {
	// PowerHeuristic(f) + PowerHeuristic(g) with f/g swapped must sum to 1:
	// the two strategies' weights partition unity for any (nf,fPdf,ng,gPdf).
	cases := []struct{ nf, ng int; fPdf, gPdf float64 }{
		{1, 1, 0.5, 0.5},
		{1, 4, 0.2, 0.1},
		{2, 1, 1.0, 3.0},
	}
	for _, c := range cases {
		wf := PowerHeuristic(c.nf, c.fPdf, c.ng, c.gPdf)
		wg := PowerHeuristic(c.ng, c.gPdf, c.nf, c.fPdf)
		if math.Abs(wf+wg-1) > 1e-9 {
			t.Errorf("PowerHeuristic weights sum to %v, want 1 (case %+v)", wf+wg, c)
		}
	}
}

func TestAABBBoundingSphereEnclosesBox(t *testing.T) {
	box := AABB{Min: Vec3{-1, -2, -3}, Max: Vec3{4, 2, 1}}
	c, r := box.BoundingSphere()
	corners := []Vec3{
		{box.Min.X, box.Min.Y, box.Min.Z}, {box.Max.X, box.Min.Y, box.Min.Z},
		{box.Min.X, box.Max.Y, box.Min.Z}, {box.Max.X, box.Max.Y, box.Min.Z},
		{box.Min.X, box.Min.Y, box.Max.Z}, {box.Max.X, box.Min.Y, box.Max.Z},
		{box.Min.X, box.Max.Y, box.Max.Z}, {box.Max.X, box.Max.Y, box.Max.Z},
	}
	for _, corner := range corners {
		if corner.Subtract(c).Length() > r+1e-9 {
			t.Errorf("corner %v lies outside bounding sphere (center=%v radius=%v)", corner, c, r)
		}
	}
}

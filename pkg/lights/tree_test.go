package lights

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/geometry"
	"github.com/lumenforge/tracecore/pkg/material"
)

func emissiveSphere(center core.Vec3, radius float64, power float64) geometry.Primitive {
	bsdf := material.NewEmissive(material.NewLambertian(material.NewSolidColor(core.Vec3{})), material.NewSolidColor(core.Splat(power)), 1, false)
	return geometry.NewSphere(center, radius, bsdf)
}

func buildTestTree(t *testing.T) (*Tree, []Entry) {
	t.Helper()
	entries := []Entry{
		{Prim: emissiveSphere(core.Vec3{X: -5}, 1, 1), Center: core.Vec3{X: -5}, Radius: 1, Power: 1},
		{Prim: emissiveSphere(core.Vec3{X: 5}, 1, 9), Center: core.Vec3{X: 5}, Radius: 1, Power: 9},
		{Prim: emissiveSphere(core.Vec3{Y: 5}, 1, 4), Center: core.Vec3{Y: 5}, Radius: 1, Power: 4},
	}
	return NewTree(entries), entries
}

func TestTreePDFConsistentWithSample(t *testing.T) {
	tree, entries := buildTestTree(t)
	p := core.Vec3{Z: -10}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10000; i++ {
		idx, pdf := tree.Sample(p, rng.Float64())
		if idx < 0 || idx >= len(entries) {
			t.Fatalf("sample returned out-of-range index %d", idx)
		}
		got := tree.PDF(p, idx)
		if math.Abs(got-pdf) > 1e-9 {
			t.Fatalf("PDF(%d) = %v, want %v (from Sample)", idx, got, pdf)
		}
	}
}

func TestTreeSampleProportionalToPower(t *testing.T) {
	tree, entries := buildTestTree(t)
	p := core.Vec3{Z: -1000} // far enough that all three entries subtend similar solid angle-ish weight differences dominated by power
	rng := rand.New(rand.NewSource(2))

	counts := make([]int, len(entries))
	const n = 200000
	for i := 0; i < n; i++ {
		idx, _ := tree.Sample(p, rng.Float64())
		counts[idx]++
	}

	totalPower := 0.0
	for _, e := range entries {
		totalPower += e.Power
	}
	for i, e := range entries {
		want := float64(n) * e.Power / totalPower
		got := float64(counts[i])
		if math.Abs(got-want)/want > 0.05 {
			t.Errorf("entry %d: got %d samples, want ~%v", i, counts[i], want)
		}
	}
}

func TestTreePDFNormalizes(t *testing.T) {
	tree, entries := buildTestTree(t)
	p := core.Vec3{X: 2, Y: 1, Z: -3}
	sum := 0.0
	for i := range entries {
		sum += tree.PDF(p, i)
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("PDFs over all entries sum to %v, want 1", sum)
	}
}

func TestTreeEmpty(t *testing.T) {
	tree := NewTree(nil)
	idx, pdf := tree.Sample(core.Vec3{}, 0.5)
	if idx != -1 || pdf != 0 {
		t.Fatalf("empty tree Sample = (%d, %v), want (-1, 0)", idx, pdf)
	}
	if got := tree.PDF(core.Vec3{}, 0); got != 0 {
		t.Fatalf("empty tree PDF = %v, want 0", got)
	}
}

func TestTreeSingleEntry(t *testing.T) {
	entries := []Entry{{Prim: emissiveSphere(core.Vec3{}, 1, 1), Center: core.Vec3{}, Radius: 1, Power: 1}}
	tree := NewTree(entries)
	idx, pdf := tree.Sample(core.Vec3{Z: -5}, 0.37)
	if idx != 0 || pdf != 1 {
		t.Fatalf("single-entry Sample = (%d, %v), want (0, 1)", idx, pdf)
	}
}

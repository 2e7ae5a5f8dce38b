package material

import (
	"github.com/lumenforge/tracecore/pkg/core"
)

// Mixed stochastically blends two BSDFs by a fixed weight: Eval and PDF
// sum the two components' contributions weighted by (1-Weight) and
// Weight respectively, while Sample picks one component per-query with
// probability Weight so variance stays bounded. Specular components are
// treated as opaque: a specular sample's weight comes straight from the
// component (Eval is meaningless for a delta lobe). The mixing factor and
// the selection probability are the same number and cancel, so only the
// sample's PDF is scaled by the selection probability.
type Mixed struct {
	baseBSDF
	A, B   BSDF
	Weight float64 // probability of sampling B
}

func NewMixed(a, b BSDF, weight float64) *Mixed {
	return &Mixed{baseBSDF: baseBSDF{lobes: a.Lobes() | b.Lobes()}, A: a, B: b, Weight: weight}
}

func (m *Mixed) PrepareForRender() {
	m.A.PrepareForRender()
	m.B.PrepareForRender()
}

func (m *Mixed) Eval(e *ScatterEvent) core.Vec3 {
	var sum core.Vec3
	if !m.A.Lobes().IsSpecular() {
		sum = sum.Add(m.A.Eval(e).Multiply(1 - m.Weight))
	}
	if !m.B.Lobes().IsSpecular() {
		sum = sum.Add(m.B.Eval(e).Multiply(m.Weight))
	}
	return sum
}

func (m *Mixed) PDF(e *ScatterEvent) float64 {
	var sum float64
	if !m.A.Lobes().IsSpecular() {
		sum += (1 - m.Weight) * m.A.PDF(e)
	}
	if !m.B.Lobes().IsSpecular() {
		sum += m.Weight * m.B.PDF(e)
	}
	return sum
}

func (m *Mixed) Sample(e *ScatterEvent) bool {
	chooseB := e.Sampler.Next1D() < m.Weight
	chosen, other, chosenProb := m.A, m.B, 1-m.Weight
	if chooseB {
		chosen, other, chosenProb = m.B, m.A, m.Weight
	}

	if !chosen.Sample(e) {
		return false
	}

	if e.SampledLobe.IsSpecular() {
		e.PDF *= chosenProb
		return true
	}

	// Combine with the other component's density at the same direction
	// (one-sample MIS / stratified mixture PDF), unless the other
	// component is itself specular and so contributes no density here.
	otherPDF := 0.0
	if !other.Lobes().IsSpecular() {
		otherPDF = other.PDF(e)
	}
	var combinedPDF float64
	if chooseB {
		combinedPDF = m.Weight*e.PDF + (1-m.Weight)*otherPDF
	} else {
		combinedPDF = (1-m.Weight)*e.PDF + m.Weight*otherPDF
	}
	if combinedPDF == 0 {
		return false
	}

	eval := m.Eval(e)
	e.PDF = combinedPDF
	e.Weight = eval.Multiply(1 / combinedPDF)
	return true
}

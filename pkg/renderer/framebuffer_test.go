package renderer

import (
	"image/color"
	"testing"

	"github.com/lumenforge/tracecore/pkg/core"
)

func TestPixelStatsMeanAndVariance(t *testing.T) {
	var ps PixelStats
	if m := ps.Mean(); !m.IsZero() {
		t.Fatalf("empty PixelStats mean = %v, want zero", m)
	}

	ps.AddSample(core.Splat(1))
	ps.AddSample(core.Splat(1))
	ps.AddSample(core.Splat(1))

	mean := ps.Mean()
	if mean.X != 1 || mean.Y != 1 || mean.Z != 1 {
		t.Errorf("mean = %v, want (1,1,1)", mean)
	}
	if v := ps.Variance(); v > 1e-12 {
		t.Errorf("variance of identical samples = %v, want ~0", v)
	}
}

func TestFramebufferToImageClampsAndGammaCorrects(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Stats[0][0].AddSample(core.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	fb.Stats[0][1].AddSample(core.Vec3{X: 2, Y: 2, Z: 2}) // over-bright, should clamp
	fb.Stats[1][0].AddSample(core.Vec3{})                 // black

	img := fb.ToImage(ToneMapConfig{Gamma: 2.0, Exposure: 1.0})

	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("image bounds = %v, want 2x2", img.Bounds())
	}

	bright := img.RGBAAt(1, 0)
	if bright.R != 255 || bright.G != 255 || bright.B != 255 {
		t.Errorf("over-bright pixel = %v, want clamped to 255", bright)
	}

	black := img.RGBAAt(0, 1)
	if black != (color.RGBA{A: 255}) {
		t.Errorf("black pixel = %v, want {0,0,0,255}", black)
	}

	mid := img.RGBAAt(0, 0)
	if mid.R == 0 || mid.R == 255 {
		t.Errorf("gamma-corrected 0.5 pixel = %v, want a mid-range value", mid)
	}
}

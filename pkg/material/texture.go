package material

import (
	"image"
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// ColorSource maps a surface coordinate to an RGB or scalar value. It
// offers point evaluation only; no ColorSource can be sampled as a
// distribution.
type ColorSource interface {
	Evaluate(uv core.Vec2, p core.Vec3) core.Vec3
}

// SolidColor is a spatially-uniform ColorSource.
type SolidColor struct{ Color core.Vec3 }

func NewSolidColor(c core.Vec3) *SolidColor { return &SolidColor{Color: c} }

func (s *SolidColor) Evaluate(core.Vec2, core.Vec3) core.Vec3 { return s.Color }

// CheckerTexture alternates between two colors on a 2D UV grid; a
// generic procedural test texture and a ready-made alpha-cutout pattern.
type CheckerTexture struct {
	Odd, Even core.Vec3
	Scale     float64
}

func NewCheckerTexture(odd, even core.Vec3, scale float64) *CheckerTexture {
	return &CheckerTexture{Odd: odd, Even: even, Scale: scale}
}

func (c *CheckerTexture) Evaluate(uv core.Vec2, _ core.Vec3) core.Vec3 {
	u := math.Floor(uv.X * c.Scale)
	v := math.Floor(uv.Y * c.Scale)
	if int(u+v)%2 == 0 {
		return c.Even
	}
	return c.Odd
}

// ErrorTexture is a constant magenta-red diagnostic texture. Nothing in
// this module substitutes it for a missing resource: LoadImageTexture
// returns an error instead, and a caller that wants the fallback uses
// ErrorTexture itself.
var ErrorTexture ColorSource = &SolidColor{Color: core.Vec3{X: 1, Y: 0, Z: 1}}

// ImageTexture samples a decoded raster image handed to it by pkg/loaders.
// Decoding itself stays out of this package; ImageTexture only samples
// an already-decoded image.Image.
type ImageTexture struct {
	Img    image.Image
	bounds image.Rectangle
	Gamma  float64 // 2.2 for albedo maps, 1.0 for already-linear data
}

func NewImageTexture(img image.Image, gamma float64) *ImageTexture {
	return &ImageTexture{Img: img, bounds: img.Bounds(), Gamma: gamma}
}

// Evaluate performs a bilinear lookup in normalized UV space (wrapping),
// converting from the image's gamma-encoded storage to linear color.
func (t *ImageTexture) Evaluate(uv core.Vec2, _ core.Vec3) core.Vec3 {
	w := t.bounds.Dx()
	h := t.bounds.Dy()
	if w == 0 || h == 0 {
		return core.Vec3{}
	}

	fx := wrap01(uv.X) * float64(w)
	fy := wrap01(1-uv.Y) * float64(h)
	x0 := int(math.Floor(fx)) % w
	y0 := int(math.Floor(fy)) % h
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	tx := fx - math.Floor(fx)
	ty := fy - math.Floor(fy)

	c00 := t.texel(x0, y0)
	c10 := t.texel(x1, y0)
	c01 := t.texel(x0, y1)
	c11 := t.texel(x1, y1)

	top := c00.Multiply(1 - tx).Add(c10.Multiply(tx))
	bottom := c01.Multiply(1 - tx).Add(c11.Multiply(tx))
	linear := top.Multiply(1 - ty).Add(bottom.Multiply(ty))

	if t.Gamma != 1.0 {
		linear = linear.GammaDecode(t.Gamma)
	}
	return linear
}

func (t *ImageTexture) texel(x, y int) core.Vec3 {
	r, g, b, _ := t.Img.At(t.bounds.Min.X+x, t.bounds.Min.Y+y).RGBA()
	return core.Vec3{X: float64(r) / 65535, Y: float64(g) / 65535, Z: float64(b) / 65535}
}

func wrap01(v float64) float64 {
	v = math.Mod(v, 1)
	if v < 0 {
		v += 1
	}
	return v
}

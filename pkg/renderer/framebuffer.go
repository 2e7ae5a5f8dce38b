// Package renderer drives the integrator across an image: tiling the
// frame, dispatching tiles to a worker pool, and accumulating per-pixel
// statistics into a displayable image. The path-tracing math itself lives
// in pkg/integrator; this package is purely the concurrency and
// image-assembly shell around it, generalized from the teacher's
// worker-pool/tile-renderer split.
package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// PixelStats accumulates the running sum of radiance samples taken for a
// single pixel, plus the luminance moments a future adaptive-sampling
// pass would need to estimate per-pixel variance.
type PixelStats struct {
	ColorAccum       core.Vec3
	LuminanceAccum   float64
	LuminanceSqAccum float64
	SampleCount      int
}

// AddSample folds one radiance sample into the running accumulators.
func (ps *PixelStats) AddSample(c core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(c)
	l := c.Luminance()
	ps.LuminanceAccum += l
	ps.LuminanceSqAccum += l * l
	ps.SampleCount++
}

// Mean returns the current average radiance for the pixel.
func (ps *PixelStats) Mean() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Multiply(1 / float64(ps.SampleCount))
}

// Variance returns the estimated variance of the pixel's luminance
// samples. Render takes a fixed sample count per pixel and does not
// consult it.
func (ps *PixelStats) Variance() float64 {
	if ps.SampleCount == 0 {
		return 0
	}
	mean := ps.LuminanceAccum / float64(ps.SampleCount)
	meanSq := ps.LuminanceSqAccum / float64(ps.SampleCount)
	return math.Max(0, meanSq-mean*mean)
}

// Framebuffer is the shared per-pixel accumulator the worker pool writes
// into; each tile owns a disjoint rectangle of it, so no pixel is ever
// written by more than one goroutine and no locking is needed.
type Framebuffer struct {
	Width, Height int
	Stats         [][]PixelStats // [y][x], global image coordinates
}

// NewFramebuffer allocates a zeroed accumulator for an image of the given
// dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	stats := make([][]PixelStats, height)
	for y := range stats {
		stats[y] = make([]PixelStats, width)
	}
	return &Framebuffer{Width: width, Height: height, Stats: stats}
}

// ToneMapConfig controls the exposure/gamma pass a framebuffer converts
// through on its way to an 8-bit image, matching the teacher's
// vec3ToColor gamma-correct-then-clamp pipeline.
type ToneMapConfig struct {
	Gamma    float64 // 0 defaults to 2.0, the teacher's constant
	Exposure float64 // 0 defaults to 1.0 (no exposure adjustment)
}

// ToImage assembles the current accumulator state into an 8-bit RGBA
// image, applying exposure then gamma correction and clamping to a
// displayable range.
func (fb *Framebuffer) ToImage(tm ToneMapConfig) *image.RGBA {
	gamma := tm.Gamma
	if gamma <= 0 {
		gamma = 2.0
	}
	exposure := tm.Exposure
	if exposure <= 0 {
		exposure = 1.0
	}

	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	invGamma := 1 / gamma
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.Stats[y][x].Mean().Multiply(exposure)
			img.SetRGBA(x, y, toRGBA(c, invGamma))
		}
	}
	return img
}

func toRGBA(c core.Vec3, invGamma float64) color.RGBA {
	c = gammaCorrect(c, invGamma).Clamp(0, 1)
	return color.RGBA{
		R: uint8(255*c.X + 0.5),
		G: uint8(255*c.Y + 0.5),
		B: uint8(255*c.Z + 0.5),
		A: 255,
	}
}

func gammaCorrect(c core.Vec3, invGamma float64) core.Vec3 {
	return core.Vec3{
		X: math.Pow(math.Max(0, c.X), invGamma),
		Y: math.Pow(math.Max(0, c.Y), invGamma),
		Z: math.Pow(math.Max(0, c.Z), invGamma),
	}
}

// Stats summarizes a completed render for the report the CLI prints
// afterward (§5), the generalization of the teacher's RenderStats.
type Stats struct {
	Width, Height   int
	TotalPixels     int
	TotalSamples    int
	AverageSamples  float64
	SamplesPerPixel int
	Elapsed         float64 // seconds
}

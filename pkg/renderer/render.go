package renderer

import (
	"context"
	"time"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/geometry"
	"github.com/lumenforge/tracecore/pkg/integrator"
)

// RenderConfig mirrors the teacher's Config/SamplingConfig split: the
// image-and-concurrency knobs here, the path-tracer's own bounce/MIS
// knobs in integrator.Config.
type RenderConfig struct {
	Width, Height int
	TileSize      int
	SamplesPerPixel int
	NumWorkers    int
	Seed          int64
	ToneMap       ToneMapConfig
}

// DefaultRenderConfig returns sensible defaults for a first render.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width: 640, Height: 480,
		TileSize:        32,
		SamplesPerPixel: 64,
		NumWorkers:      0, // 0 lets errgroup.SetLimit fall through to unbounded; callers pass runtime.NumCPU()
		Seed:            1,
		ToneMap:         ToneMapConfig{Gamma: 2.0, Exposure: 1.0},
	}
}

// Renderer ties a camera and a path tracer to the tiled worker pool,
// the top-level object cmd/raytracer constructs and calls Render on.
type Renderer struct {
	camera *geometry.Camera
	pt     *integrator.PathTracer
	cfg    RenderConfig
}

func NewRenderer(camera *geometry.Camera, pt *integrator.PathTracer, cfg RenderConfig) *Renderer {
	return &Renderer{camera: camera, pt: pt, cfg: cfg}
}

// RenderTile implements TilePixelRenderer: every pixel in the tile is
// sampled cfg.SamplesPerPixel times through the camera and path tracer,
// accumulated directly into the shared framebuffer.
func (r *Renderer) RenderTile(tile Tile, fb *Framebuffer, spp int, sampler core.Sampler) {
	bounds := tile.Bounds
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixelID := y*fb.Width + x
			ps := &fb.Stats[y][x]
			for s := 0; s < spp; s++ {
				sampler.StartPath(pixelID, ps.SampleCount)
				ray := r.camera.SampleRay(x, y, sampler)
				c := r.pt.TraceSample(ray, core.Splat(1), sampler)
				ps.AddSample(c)
			}
		}
	}
}

// Render runs a full frame: tiles the image, dispatches every tile to
// the errgroup-backed worker pool, and returns the accumulated
// framebuffer alongside summary statistics; converting it to a
// displayable image is left to ToImage.
func (r *Renderer) Render(ctx context.Context) (*Framebuffer, Stats, error) {
	fb := NewFramebuffer(r.cfg.Width, r.cfg.Height)
	tiles := NewTileGrid(r.cfg.Width, r.cfg.Height, r.cfg.TileSize)

	start := time.Now()
	if err := RunTiles(ctx, tiles, fb, r.cfg.SamplesPerPixel, r.cfg.NumWorkers, r.cfg.Seed, r); err != nil {
		return nil, Stats{}, err
	}
	elapsed := time.Since(start)

	totalPixels := r.cfg.Width * r.cfg.Height
	stats := Stats{
		Width:           r.cfg.Width,
		Height:          r.cfg.Height,
		TotalPixels:     totalPixels,
		TotalSamples:    totalPixels * r.cfg.SamplesPerPixel,
		AverageSamples:  float64(r.cfg.SamplesPerPixel),
		SamplesPerPixel: r.cfg.SamplesPerPixel,
		Elapsed:         elapsed.Seconds(),
	}
	return fb, stats, nil
}

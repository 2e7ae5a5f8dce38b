package renderer

import (
	"context"
	"math"
	"testing"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/geometry"
	"github.com/lumenforge/tracecore/pkg/integrator"
	"github.com/lumenforge/tracecore/pkg/material"
)

// TestRenderFurnaceConverges is an end-to-end pass of the worker pool and
// tile renderer over the furnace scenario from spec §8: every pixel
// should read back approximately the 0.5 albedo regardless of tiling.
func TestRenderFurnaceConverges(t *testing.T) {
	sphereBSDF := material.NewLambertian(material.NewSolidColor(core.Splat(0.5)))
	sphere := geometry.NewSphere(core.Vec3{}, 1, sphereBSDF)
	env := geometry.NewInfiniteSphere(material.NewSolidColor(core.Splat(1)))
	root := geometry.NewAggregate([]geometry.Primitive{sphere})
	scene := integrator.NewScene(root, []geometry.Primitive{env}, []geometry.Primitive{sphere, env}, nil)

	cfg := integrator.DefaultConfig()
	cfg.MaxBounces = 16
	pt := integrator.NewPathTracer(scene, cfg)

	// A 10-degree field of view from distance 5 keeps the whole frame
	// inside the unit sphere's silhouette, so every pixel sees the sphere.
	camera := geometry.NewCamera(geometry.CameraConfig{
		LookFrom: core.Vec3{Z: -5}, LookAt: core.Vec3{}, Up: core.Vec3{Y: 1},
		VFov: 10, AspectRatio: 1, Width: 4, Height: 4,
	})

	rcfg := DefaultRenderConfig()
	rcfg.Width, rcfg.Height = 4, 4
	rcfg.TileSize = 2
	rcfg.SamplesPerPixel = 256
	rcfg.NumWorkers = 2

	r := NewRenderer(camera, pt, rcfg)
	fb, stats, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if stats.TotalPixels != 16 {
		t.Errorf("TotalPixels = %d, want 16", stats.TotalPixels)
	}

	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			mean := fb.Stats[y][x].Mean()
			for _, c := range []float64{mean.X, mean.Y, mean.Z} {
				if math.Abs(c-0.5) > 0.15 {
					t.Errorf("pixel (%d,%d) channel = %v, want ~0.5", x, y, c)
				}
			}
		}
	}
}

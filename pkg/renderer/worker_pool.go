package renderer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lumenforge/tracecore/pkg/core"
)

// TilePixelRenderer renders every pixel within a tile's bounds into the
// shared framebuffer. It is the seam Render wires to an
// integrator.PathTracer + geometry.Camera pair without this package
// needing to import either.
type TilePixelRenderer interface {
	RenderTile(tile Tile, fb *Framebuffer, spp int, sampler core.Sampler)
}

// RunTiles dispatches every tile in tiles to a bounded pool of goroutines
// via errgroup.Group, replacing the hand-rolled sync.WaitGroup-plus-
// channel pair the teacher's WorkerPool used: a tile panic or the first
// returned error cancels the group's context and SetLimit bounds
// in-flight goroutines to numWorkers, the same backpressure the teacher's
// fixed-size channel buffer gave for free. Each tile gets its own
// core.Sampler seeded deterministically from its ID so a render is
// reproducible across worker counts.
func RunTiles(ctx context.Context, tiles []Tile, fb *Framebuffer, spp int, numWorkers int, seed int64, tr TilePixelRenderer) error {
	g, gctx := errgroup.WithContext(ctx)
	if numWorkers > 0 {
		g.SetLimit(numWorkers)
	}

	for _, tile := range tiles {
		tile := tile
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("renderer: tile %d panicked: %v", tile.ID, r)
				}
			}()
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			sampler := core.NewRandomSampler(seed + int64(uint64(tile.ID)*0x9e3779b97f4a7c15))
			tr.RenderTile(tile, fb, spp, sampler)
			return nil
		})
	}

	return g.Wait()
}

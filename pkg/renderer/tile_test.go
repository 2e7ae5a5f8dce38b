package renderer

import "testing"

func TestNewTileGridCoversImageExactlyOnce(t *testing.T) {
	const w, h, tileSize = 100, 75, 32
	tiles := NewTileGrid(w, h, tileSize)

	covered := make([][]bool, h)
	for y := range covered {
		covered[y] = make([]bool, w)
	}

	for _, tile := range tiles {
		b := tile.Bounds
		if b.Min.X < 0 || b.Min.Y < 0 || b.Max.X > w || b.Max.Y > h {
			t.Fatalf("tile %d bounds %v out of image range", tile.ID, b)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if covered[y][x] {
					t.Fatalf("pixel (%d,%d) covered by more than one tile", x, y)
				}
				covered[y][x] = true
			}
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !covered[y][x] {
				t.Fatalf("pixel (%d,%d) not covered by any tile", x, y)
			}
		}
	}
}

func TestNewTileGridDeterministicIDs(t *testing.T) {
	tiles := NewTileGrid(64, 64, 32)
	for i, tile := range tiles {
		if tile.ID != i {
			t.Errorf("tile %d has ID %d, want raster-order ID %d", i, tile.ID, i)
		}
	}
}

// Package loaders holds the reference adapters outside the core's
// responsibility (§1's Non-goals exclude scene parsing and texture
// decoding from the core itself, but a repo needs something to actually
// load a scene with): image decoding feeding material.ImageTexture, TOML
// render-settings, and a minimal PBRT-subset scene parser.
package loaders

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/lumenforge/tracecore/pkg/material"
)

func init() {
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
	image.RegisterFormat("tiff", "II*\x00", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("tiff", "MM\x00*", tiff.Decode, tiff.DecodeConfig)
}

// LoadImageTexture decodes an image file (PNG/JPEG/GIF via the stdlib,
// BMP/TIFF via golang.org/x/image) and wraps it directly in a
// material.ImageTexture, the seam ImageTexture documents as its expected
// caller. gamma is the source image's encoding gamma (2.2 for an sRGB
// albedo map, 1.0 for data already in linear space).
func LoadImageTexture(path string, gamma float64) (*material.ImageTexture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loaders: opening %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loaders: decoding %q: %w", path, err)
	}
	return material.NewImageTexture(img, gamma), nil
}

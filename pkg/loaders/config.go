package loaders

import (
	"github.com/BurntSushi/toml"

	"github.com/lumenforge/tracecore/pkg/integrator"
	"github.com/lumenforge/tracecore/pkg/renderer"
)

// RenderSettings is the TOML-decoded sidecar a scene file ships alongside
// it: everything that controls how a render runs rather than what it
// shows (spp, bounces, tile size, output path), mirroring the teacher's
// flag-parsed Config/SamplingConfig split but as a file instead of CLI
// flags — the PBRT-subset scene file remains the "real" scene format,
// this just covers the render-settings half BurntSushi/toml was pulled
// in for.
type RenderSettings struct {
	SamplesPerPixel           int     `toml:"samples_per_pixel"`
	MaxBounces                int     `toml:"max_bounces"`
	RussianRouletteMinBounces int     `toml:"russian_roulette_min_bounces"`
	TileSize                  int     `toml:"tile_size"`
	Workers                   int     `toml:"workers"`
	Width                     int     `toml:"width"`
	Height                    int     `toml:"height"`
	Seed                      int64   `toml:"seed"`
	OutputPath                string  `toml:"output"`
	EnableMIS                 bool    `toml:"mis"`
	Gamma                     float64 `toml:"gamma"`
}

// LoadRenderSettings decodes a TOML render-settings file. Missing fields
// keep their Go zero value; ToRenderConfig/ToIntegratorConfig fill those
// in from the package defaults.
func LoadRenderSettings(path string) (RenderSettings, error) {
	var rs RenderSettings
	_, err := toml.DecodeFile(path, &rs)
	return rs, err
}

// ToRenderConfig merges the decoded settings over renderer's defaults,
// leaving any zero-valued field at its default rather than forcing the
// caller to fully populate the TOML file.
func (rs RenderSettings) ToRenderConfig() renderer.RenderConfig {
	cfg := renderer.DefaultRenderConfig()
	if rs.Width > 0 {
		cfg.Width = rs.Width
	}
	if rs.Height > 0 {
		cfg.Height = rs.Height
	}
	if rs.TileSize > 0 {
		cfg.TileSize = rs.TileSize
	}
	if rs.SamplesPerPixel > 0 {
		cfg.SamplesPerPixel = rs.SamplesPerPixel
	}
	if rs.Workers > 0 {
		cfg.NumWorkers = rs.Workers
	}
	if rs.Seed != 0 {
		cfg.Seed = rs.Seed
	}
	if rs.Gamma > 0 {
		cfg.ToneMap.Gamma = rs.Gamma
	}
	return cfg
}

// ToIntegratorConfig merges the decoded settings over integrator's
// defaults the same way ToRenderConfig does for the image/concurrency
// side.
func (rs RenderSettings) ToIntegratorConfig() integrator.Config {
	cfg := integrator.DefaultConfig()
	if rs.MaxBounces > 0 {
		cfg.MaxBounces = rs.MaxBounces
	}
	if rs.RussianRouletteMinBounces > 0 {
		cfg.RussianRouletteMinBounces = rs.RussianRouletteMinBounces
	}
	cfg.EnableLightSampling = rs.EnableMIS || cfg.EnableLightSampling
	return cfg
}

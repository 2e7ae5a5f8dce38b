package loaders

import "testing"

func TestRenderSettingsMergeOverDefaults(t *testing.T) {
	rs := RenderSettings{Width: 1920, Height: 1080, SamplesPerPixel: 512}
	cfg := rs.ToRenderConfig()

	if cfg.Width != 1920 || cfg.Height != 1080 {
		t.Errorf("resolution = %dx%d, want 1920x1080", cfg.Width, cfg.Height)
	}
	if cfg.SamplesPerPixel != 512 {
		t.Errorf("SamplesPerPixel = %d, want 512", cfg.SamplesPerPixel)
	}
	// TileSize wasn't set in rs, so the renderer default should survive.
	if cfg.TileSize == 0 {
		t.Error("TileSize should default, not zero out, when unset in TOML")
	}
}

func TestRenderSettingsToIntegratorConfig(t *testing.T) {
	rs := RenderSettings{MaxBounces: 8}
	cfg := rs.ToIntegratorConfig()
	if cfg.MaxBounces != 8 {
		t.Errorf("MaxBounces = %d, want 8", cfg.MaxBounces)
	}
	if !cfg.EnableLightSampling {
		t.Error("EnableLightSampling should default true")
	}
}

package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lumenforge/tracecore/pkg/integrator"
	"github.com/lumenforge/tracecore/pkg/loaders"
	"github.com/lumenforge/tracecore/pkg/renderer"
)

// renderFlags holds the render subcommand's flag-bound values, the
// generalization of the teacher's flat Config struct into cobra's
// flag-per-field idiom.
type renderFlags struct {
	scenePath                string
	spp                      int
	maxBounces               int
	russianRouletteMinBounce int
	workers                  int
	width, height            int
	out                      string
	seed                     int64
	enableMIS                bool
	cpuProfile               string
}

// NewRootCommand builds the raytracer command tree: a root command plus
// render and scenes subcommands.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "raytracer",
		Short: "A physically-based Monte Carlo path tracer",
	}
	root.AddCommand(newRenderCommand())
	root.AddCommand(newScenesCommand())
	return root
}

func newRenderCommand() *cobra.Command {
	flags := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a PBRT-subset scene file to PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.scenePath, "scene", "", "path to a PBRT-subset scene file (required)")
	f.IntVar(&flags.spp, "spp", 0, "samples per pixel (0 = use scene/render-settings default)")
	f.IntVar(&flags.maxBounces, "max-bounces", 0, "maximum path bounces (0 = default)")
	f.IntVar(&flags.russianRouletteMinBounce, "russian-roulette-min-bounces", 0, "bounce count after which Russian roulette may terminate a path (0 = default)")
	f.IntVar(&flags.workers, "workers", 0, "number of parallel tile workers (0 = runtime.NumCPU())")
	f.IntVar(&flags.width, "width", 0, "image width in pixels (0 = scene's Film resolution)")
	f.IntVar(&flags.height, "height", 0, "image height in pixels (0 = scene's Film resolution)")
	f.StringVar(&flags.out, "out", "render.png", "output PNG path")
	f.Int64Var(&flags.seed, "seed", 1, "RNG seed, for reproducible renders")
	f.BoolVar(&flags.enableMIS, "mis", true, "enable next-event estimation with multiple importance sampling")
	f.StringVar(&flags.cpuProfile, "cpuprofile", "", "write a CPU profile to this path")
	cmd.MarkFlagRequired("scene")

	return cmd
}

func runRender(cmd *cobra.Command, flags *renderFlags) error {
	if flags.cpuProfile != "" {
		f, err := os.Create(flags.cpuProfile)
		if err != nil {
			return errors.Wrap(err, "creating CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return errors.Wrap(err, "starting CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	loaded, err := loaders.LoadPBRTFile(flags.scenePath)
	if err != nil {
		return errors.Wrapf(err, "loading scene %q", flags.scenePath)
	}

	icfg := integrator.DefaultConfig()
	icfg.EnableLightSampling = flags.enableMIS
	if flags.maxBounces > 0 {
		icfg.MaxBounces = flags.maxBounces
	}
	if flags.russianRouletteMinBounce > 0 {
		icfg.RussianRouletteMinBounces = flags.russianRouletteMinBounce
	}
	pt := integrator.NewPathTracer(loaded.Scene, icfg)

	rcfg := renderer.DefaultRenderConfig()
	rcfg.Width = loaded.Camera.Width
	rcfg.Height = loaded.Camera.Height
	if flags.width > 0 {
		rcfg.Width = flags.width
	}
	if flags.height > 0 {
		rcfg.Height = flags.height
	}
	if flags.spp > 0 {
		rcfg.SamplesPerPixel = flags.spp
	}
	rcfg.Seed = flags.seed
	rcfg.NumWorkers = flags.workers
	if rcfg.NumWorkers <= 0 {
		rcfg.NumWorkers = runtime.NumCPU()
	}

	runID := uuid.New()
	cmd.Printf("render %s: %dx%d, %d spp, %d workers\n", runID, rcfg.Width, rcfg.Height, rcfg.SamplesPerPixel, rcfg.NumWorkers)

	r := renderer.NewRenderer(loaded.Camera, pt, rcfg)
	fb, stats, err := r.Render(context.Background())
	if err != nil {
		return errors.Wrap(err, "rendering")
	}

	if dir := filepath.Dir(flags.out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating output directory %q", dir)
		}
	}
	out, err := os.Create(flags.out)
	if err != nil {
		return errors.Wrapf(err, "creating output file %q", flags.out)
	}
	defer out.Close()

	img := fb.ToImage(rcfg.ToneMap)
	if err := png.Encode(out, img); err != nil {
		return errors.Wrap(err, "encoding PNG")
	}

	renderer.WriteReport(cmd.OutOrStdout(), stats)
	cmd.Printf("saved %s\n", flags.out)
	return nil
}

func newScenesCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List discoverable .pbrt scene files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenes(cmd, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "scenes", "directory to scan for .pbrt scene files")
	return cmd
}

func runScenes(cmd *cobra.Command, dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pbrt"))
	if err != nil {
		return errors.Wrapf(err, "scanning %q", dir)
	}
	if len(matches) == 0 {
		cmd.Printf("no .pbrt scene files found under %q\n", dir)
		return nil
	}
	for _, m := range matches {
		cmd.Println(m)
	}
	return nil
}

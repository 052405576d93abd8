package cmd

import (
	"errors"

	"github.com/urfave/cli"

	"github.com/df07/go-progressive-pathtracer/pkg/config"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// SceneFlags are accepted by every command that builds a scene
var SceneFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "scene",
		Usage: "built-in scene (default, spheres, furnace) or none",
	},
	cli.IntFlag{
		Name:  "width",
		Usage: "window width",
	},
	cli.IntFlag{
		Name:  "height",
		Usage: "window height",
	},
	cli.IntFlag{
		Name:  "subsampling",
		Usage: "window pixels per image pixel along each axis",
	},
	cli.IntFlag{
		Name:  "bounces",
		Usage: "maximum number of bounces per path",
	},
	cli.IntFlag{
		Name:  "max-paths",
		Usage: "stop accumulating after this many paths per pixel (0 = unbounded)",
	},
	cli.BoolFlag{
		Name:  "jitter",
		Usage: "randomize sample positions inside each pixel",
	},
	cli.IntFlag{
		Name:  "workers",
		Usage: "number of render workers (0 = one per logical CPU)",
	},
	cli.Int64Flag{
		Name:  "seed",
		Usage: "base seed for the worker samplers",
	},
	cli.StringFlag{
		Name:  "env",
		Usage: "environment map (.hdr, .png, .jpg or .tga)",
	},
	cli.Float64Flag{
		Name:  "env-multiplier",
		Usage: "environment radiance scale",
	},
	cli.StringFlag{
		Name:  "filter",
		Usage: "environment map filter (nearest or bilinear)",
	},
}

// loadConfig reads the optional scene file argument and applies flag overrides
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	switch ctx.NArg() {
	case 0:
	case 1:
		var err error
		if cfg, err = config.Load(ctx.Args().First()); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("expected at most one scene file argument")
	}

	if ctx.IsSet("scene") {
		cfg.Scene = ctx.String("scene")
	}
	if ctx.IsSet("width") {
		cfg.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Height = ctx.Int("height")
	}
	if ctx.IsSet("subsampling") {
		cfg.Settings.Subsampling = ctx.Int("subsampling")
	}
	if ctx.IsSet("bounces") {
		cfg.Settings.MaxBounces = ctx.Int("bounces")
	}
	if ctx.IsSet("max-paths") {
		cfg.Settings.MaxPathsPerPixel = ctx.Int("max-paths")
	}
	if ctx.IsSet("jitter") {
		cfg.Settings.Jitter = ctx.Bool("jitter")
	}
	if ctx.IsSet("workers") {
		cfg.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("seed") {
		cfg.Seed = ctx.Int64("seed")
	}
	if ctx.IsSet("env") {
		cfg.Environment.Path = ctx.String("env")
	}
	if ctx.IsSet("env-multiplier") {
		cfg.Environment.Multiplier = ctx.Float64("env-multiplier")
	}
	if ctx.IsSet("filter") {
		cfg.Environment.Filter = ctx.String("filter")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupRender builds the scene and a render context sized to the window.
// The caller stops the returned pool.
func setupRender(cfg *config.Config) (*scene.Scene, *renderer.Context, *renderer.WorkerPool, error) {
	sc, err := scene.Build(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	pool := renderer.NewWorkerPool(cfg.Workers, cfg.Seed)
	rc, err := renderer.NewContext(cfg.Settings, sc.Accelerator, sc.Light, sc.Environment, pool)
	if err == nil {
		err = rc.Resize(cfg.Width, cfg.Height)
	}
	if err != nil {
		pool.Stop()
		return nil, nil, nil, err
	}
	return sc, rc, pool, nil
}

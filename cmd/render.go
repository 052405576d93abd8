package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// RenderFlags are the render command's own flags
var RenderFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "passes, p",
		Value: 16,
		Usage: "number of passes (one path per pixel each)",
	},
	cli.StringFlag{
		Name:  "out, o",
		Usage: "output image (.png, .webp or .tga)",
	},
	cli.BoolFlag{
		Name:  "smooth",
		Usage: "upscale subsampled images with Catmull-Rom instead of nearest neighbor",
	},
}

// RenderFrame renders a fixed number of passes and saves the image.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if ctx.IsSet("out") {
		cfg.Output = ctx.String("out")
	}
	if _, err := renderer.FormatFromPath(cfg.Output); err != nil {
		return err
	}

	sc, rc, pool, err := setupRender(cfg)
	if err != nil {
		return err
	}
	defer pool.Stop()

	view := sc.Camera.View()
	proj := sc.Camera.Projection(float64(cfg.Width) / float64(cfg.Height))

	start := time.Now()
	passes := ctx.Int("passes")
	for i := 0; i < passes; i++ {
		if !rc.TracePaths(view, proj) {
			logger.Infof("path cap reached after %d passes", i)
			break
		}
	}
	logger.Infof("rendered %d passes in %v", rc.SampleCount(), time.Since(start))

	displayRenderStats(rc.Stats())

	img := renderer.Upscale(rc.Snapshot().ToRGBA(), cfg.Width, cfg.Height, ctx.Bool("smooth"))
	if dir := filepath.Dir(cfg.Output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := renderer.SaveImage(cfg.Output, img); err != nil {
		return err
	}

	logger.Noticef("render saved as %s", cfg.Output)
	return nil
}

func displayRenderStats(stats renderer.RenderStats) {
	var buf bytes.Buffer
	stats.Table(&buf)
	logger.Noticef("render statistics\n%s", buf.String())
}

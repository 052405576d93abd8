package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/df07/go-progressive-pathtracer/cmd"
	"github.com/df07/go-progressive-pathtracer/pkg/log"
)

var logger = log.New("pathtracer")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "pathtracer"
	app.Usage = "progressively render scenes with a unidirectional path tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a still image",
			Description: `
Build the scene described by an optional JSON scene file, trace a fixed number
of passes and save the averaged image. Flags override values from the file.

The image is rendered at the window size divided by the subsampling factor and
upscaled back to the window size before saving.`,
			ArgsUsage: "[scene.json]",
			Flags:     append(append([]cli.Flag{}, cmd.SceneFlags...), cmd.RenderFlags...),
			Action:    cmd.RenderFrame,
		},
		{
			Name:  "serve",
			Usage: "render progressively behind an HTTP preview server",
			Description: `
Render passes continuously and serve the current image, statistics and scene
controls over HTTP. Every edit restarts accumulation.`,
			ArgsUsage: "[scene.json]",
			Flags:     append(append([]cli.Flag{}, cmd.SceneFlags...), cmd.ServeFlags...),
			Action:    cmd.Serve,
		},
		{
			Name:      "materials",
			Usage:     "list scene materials",
			ArgsUsage: "[scene.json]",
			Flags:     append(append([]cli.Flag{}, cmd.SceneFlags...), cmd.MaterialFlags...),
			Action:    cmd.ListMaterials,
		},
		{
			Name:   "info",
			Usage:  "show host resources available for rendering",
			Action: cmd.Info,
		},
	}
	return app
}

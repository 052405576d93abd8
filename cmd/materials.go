package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// MaterialFlags are the materials command's own flags
var MaterialFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "save",
		Usage: "write the scene materials to this .mtl file",
	},
}

// ListMaterials prints the materials of a scene and optionally saves them as
// a wavefront material library.
func ListMaterials(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	sc, err := scene.Build(cfg)
	if err != nil {
		return err
	}

	sc.MaterialTable(ctx.App.Writer)

	if path := ctx.String("save"); path != "" {
		if err := loaders.SaveMTL(path, sc.Materials); err != nil {
			return err
		}
		logger.Noticef("saved %d materials to %s", len(sc.Materials), path)
	}
	return nil
}

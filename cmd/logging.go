package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-progressive-pathtracer/pkg/log"
)

var logger = log.New("pathtracer")

func setupLogging(ctx *cli.Context) {
	verbosity := 0
	if ctx.GlobalBool("v") {
		verbosity = 1
	}
	if ctx.GlobalBool("vv") {
		verbosity = 2
	}
	log.SetLevel(log.LevelFromVerbosity(verbosity))
}

package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/urfave/cli"

	"github.com/df07/go-progressive-pathtracer/pkg/log"
	"github.com/df07/go-progressive-pathtracer/web/server"
)

// ServeFlags are the serve command's own flags
var ServeFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "port",
		Value: 8080,
		Usage: "port to serve on",
	},
}

// Serve renders progressively and exposes the image and controls over HTTP
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	console := server.NewConsole(256)
	log.SetSink(os.Stdout, console)

	sc, rc, pool, err := setupRender(cfg)
	if err != nil {
		return err
	}
	defer pool.Stop()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return server.NewServer(ctx.Int("port"), sc, rc, console).Start(runCtx)
}

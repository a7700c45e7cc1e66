package commands

import (
	"context"

	"github.com/wolfeidau/tutorcontrol/internal/buildconfig"
	"github.com/wolfeidau/tutorcontrol/internal/devreload"
	"golang.org/x/sync/errgroup"
)

type DevCmd struct {
	Listen string `help:"override the dev server address from the build config" default:"" env:"TUTOR_DEV_LISTEN"`

	ServerFlags `embed:""`
}

func (c *DevCmd) Run(ctx context.Context, globals *Globals) error {
	log, err := globals.logger(true)
	if err != nil {
		return err
	}

	mode := globals.mode(buildconfig.Development)
	pipeline, err := globals.pipeline(mode)
	if err != nil {
		return err
	}

	addr := c.Listen
	if addr == "" {
		addr = pipeline.Config().ListenAddr()
	}
	log.Info().Str("mode", mode).Str("addr", addr).Msg("Starting development server")

	defer c.startTelemetry(ctx, log, globals.Version)()

	hub := devreload.NewHub()
	defer hub.Close()
	pipeline.OnRebuild(hub.Rebuilt)

	st, closeStore, err := c.openStore(ctx, log)
	if err != nil {
		return err
	}
	defer closeStore()

	h, err := c.handler(log, pipeline, st, hub)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pipeline.Dev(ctx)
	})
	g.Go(func() error {
		return listenAndServe(ctx, log, configureHTTPServer(addr, h))
	})
	return g.Wait()
}

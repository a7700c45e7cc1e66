package commands

import (
	"fmt"

	"github.com/wolfeidau/tutorcontrol/internal/buildconfig"
)

type BuildCmd struct{}

func (c *BuildCmd) Run(globals *Globals) error {
	log, err := globals.logger(false)
	if err != nil {
		return err
	}

	mode := globals.mode(buildconfig.Production)
	pipeline, err := globals.pipeline(mode)
	if err != nil {
		return err
	}

	if err := pipeline.Build(); err != nil {
		return fmt.Errorf("failed to build assets: %w", err)
	}

	cfg := pipeline.Config()
	log.Info().Str("mode", mode).Str("out_dir", cfg.AssetsPath()).Msg("Assets built")
	return nil
}

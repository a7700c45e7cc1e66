package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/tutorcontrol/cmd/tutorcontrol/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug     bool             `help:"Enable debug logging."`
		LogLevel  string           `help:"Log level override." env:"TUTOR_LOG_LEVEL"`
		Mode      string           `help:"Build profile (development or production); defaults per command." env:"TUTOR_MODE"`
		Config    string           `help:"Path to the YAML build config." default:"tutor.yaml" type:"path" env:"TUTOR_CONFIG"`
		Templates string           `help:"Directory of HTML templates replacing the built-in page shell." type:"existingdir" env:"TUTOR_TEMPLATES"`
		Version   kong.VersionFlag `help:"Print the version."`

		Serve  commands.ServeCmd  `cmd:"" help:"Build assets and serve the website and API"`
		Build  commands.BuildCmd  `cmd:"" help:"Bundle the client assets"`
		Dev    commands.DevCmd    `cmd:"" help:"Watch and rebuild assets while serving the development profile"`
		Routes commands.RoutesCmd `cmd:"" help:"Print the route table or resolve a URL"`
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("tutorcontrol"),
		kong.Description("Tutor control: students, lessons, homework and progress journals."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:     cli.Debug,
		LogLevel:  cli.LogLevel,
		Mode:      cli.Mode,
		Config:    cli.Config,
		Templates: cli.Templates,
		Version:   version,
	})
	cmd.FatalIfErrorf(err)
}

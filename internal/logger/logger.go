package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures the process logger.
type Options struct {
	// Dev switches to the console writer with stack traces.
	Dev bool
	// Level overrides the default level (debug in dev, info otherwise).
	Level string
	// Out defaults to stderr.
	Out io.Writer
}

// Setup builds the process logger and installs it as the global zerolog logger.
func Setup(opts Options) (zerolog.Logger, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Dev {
		level = zerolog.DebugLevel
	}
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
		level = parsed
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()

	if opts.Dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	log.Logger = logger
	return logger, nil
}

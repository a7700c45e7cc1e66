package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/tutorcontrol/internal/assets"
	"github.com/wolfeidau/tutorcontrol/internal/buildconfig"
	"github.com/wolfeidau/tutorcontrol/internal/logger"
	"github.com/wolfeidau/tutorcontrol/internal/routes"
)

type Globals struct {
	Debug     bool
	LogLevel  string
	Mode      string
	Config    string
	Templates string
	Version   string

	// Out receives command output, stdout when nil.
	Out io.Writer
}

// mode returns the selected profile, or fallback when none was given.
func (g *Globals) mode(fallback string) string {
	if g.Mode != "" {
		return g.Mode
	}
	return fallback
}

func (g *Globals) logger(dev bool) (zerolog.Logger, error) {
	return logger.Setup(logger.Options{Dev: dev || g.Debug, Level: g.LogLevel})
}

func (g *Globals) pipeline(mode string) (*assets.Pipeline, error) {
	cfg, err := buildconfig.Load(g.Config, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load build config: %w", err)
	}

	var pipeline *assets.Pipeline
	if g.Templates != "" {
		pipeline, err = assets.NewWithTemplateDir(cfg, routes.Default(), g.Templates, nil)
	} else {
		pipeline, err = assets.New(cfg, routes.Default())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load assets pipeline: %w", err)
	}
	return pipeline, nil
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

// listenAndServe runs srv until ctx is cancelled, then drains open requests.
func listenAndServe(ctx context.Context, log zerolog.Logger, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

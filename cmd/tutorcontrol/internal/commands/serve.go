package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/tutorcontrol/internal/api"
	"github.com/wolfeidau/tutorcontrol/internal/assets"
	"github.com/wolfeidau/tutorcontrol/internal/buildconfig"
	"github.com/wolfeidau/tutorcontrol/internal/devreload"
	httpmiddleware "github.com/wolfeidau/tutorcontrol/internal/http"
	"github.com/wolfeidau/tutorcontrol/internal/routes"
	"github.com/wolfeidau/tutorcontrol/internal/store"
	memorystore "github.com/wolfeidau/tutorcontrol/internal/store/memory"
	postgresstore "github.com/wolfeidau/tutorcontrol/internal/store/postgres"
	"github.com/wolfeidau/tutorcontrol/internal/telemetry"
	"github.com/wolfeidau/tutorcontrol/internal/website"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServerFlags are shared by serve and dev.
type ServerFlags struct {
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:5173" env:"TUTOR_CORS_ORIGINS"`
	Tracing     bool     `help:"enable OpenTelemetry tracing and metrics export" default:"false" env:"TUTOR_TRACING"`
	SampleRatio float64  `help:"fraction of traces to sample" default:"1" env:"TUTOR_TRACE_SAMPLE_RATIO"`
	Metrics     bool     `help:"expose Prometheus metrics on /metrics" default:"true" negatable:"" env:"TUTOR_METRICS"`
	H2C         bool     `help:"accept HTTP/2 without TLS" default:"false" env:"TUTOR_H2C"`

	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"TUTOR_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32         `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32         `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"1h"`
	MaxConnIdleTime time.Duration `help:"maximum connection idle time" default:"30m"`
	RetryTimeout    time.Duration `help:"how long to keep retrying an unreachable database on startup" default:"30s"`

	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"TUTOR_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (s *PostgresStoreFlags) poolConfig() *postgresstore.PoolConfig {
	return &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
		RetryTimeout:    s.RetryTimeout,
	}
}

// openStore returns the configured store and a function releasing it.
func (f *ServerFlags) openStore(ctx context.Context, log zerolog.Logger) (store.Store, func(), error) {
	switch f.StoreType {
	case "postgres":
		if err := f.PostgresStore.Validate(); err != nil {
			return nil, nil, fmt.Errorf("failed to validate postgres flags: %w", err)
		}
		st, err := postgresstore.Open(ctx, f.PostgresStore.poolConfig(), f.PostgresStore.AutoMigrate)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Bool("auto_migrate", f.PostgresStore.AutoMigrate).Msg("Using PostgreSQL store")
		return st, st.Close, nil
	default:
		log.Info().Msg("Using in-memory store")
		return memorystore.NewStore(), func() {}, nil
	}
}

// startTelemetry initialises OpenTelemetry when tracing is enabled and
// returns the matching shutdown function.
func (f *ServerFlags) startTelemetry(ctx context.Context, log zerolog.Logger, version string) func() {
	if !f.Tracing {
		return func() {}
	}

	log.Info().Float64("sample_ratio", f.SampleRatio).Msg("Tracing is enabled")
	shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
		ServiceName: "tutorcontrol",
		Version:     version,
		SampleRatio: f.SampleRatio,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

// handler assembles the website around st.
func (f *ServerFlags) handler(log zerolog.Logger, pipeline *assets.Pipeline, st store.Store, hub *devreload.Hub) (http.Handler, error) {
	table := routes.Default()

	cfg := website.Config{
		Pipeline:    pipeline,
		Table:       table,
		API:         api.New(st, table).Routes(),
		CORSOrigins: f.CORSOrigins,
		Reload:      hub,
		Logger:      log,
	}
	if f.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		cfg.Metrics = httpmiddleware.NewMetrics(reg)
	}

	h, err := website.New(cfg).Handler()
	if err != nil {
		return nil, err
	}

	if f.Tracing {
		h = otelhttp.NewHandler(h, "tutorcontrol")
	}
	if f.H2C {
		h = h2c.NewHandler(h, &http2.Server{})
	}
	return h, nil
}

type ServeCmd struct {
	Listen  string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"TUTOR_LISTEN"`
	NoBuild bool   `help:"serve previously built assets without bundling first" default:"false" env:"TUTOR_NO_BUILD"`

	ServerFlags `embed:""`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log, err := globals.logger(false)
	if err != nil {
		return err
	}

	mode := globals.mode(buildconfig.Production)
	log.Info().Str("version", globals.Version).Str("mode", mode).Msg("Starting server")

	defer c.startTelemetry(ctx, log, globals.Version)()

	pipeline, err := globals.pipeline(mode)
	if err != nil {
		return err
	}
	if c.NoBuild {
		err = pipeline.LoadMetafile()
	} else {
		err = pipeline.Build()
	}
	if err != nil {
		return fmt.Errorf("failed to prepare assets: %w", err)
	}

	st, closeStore, err := c.openStore(ctx, log)
	if err != nil {
		return err
	}
	defer closeStore()

	h, err := c.handler(log, pipeline, st, nil)
	if err != nil {
		return err
	}

	return listenAndServe(ctx, log, configureHTTPServer(c.Listen, h))
}

package postgres

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ApplicationName is reported to the server for every pooled connection.
const ApplicationName = "tutorcontrol"

// PoolConfig configures the connection pool. Zero values take the defaults
// noted on each field.
type PoolConfig struct {
	// ConnString is a postgres:// URL or key=value DSN.
	ConnString string

	MaxConns          int32         // 20
	MinConns          int32         // 2
	MaxConnLifetime   time.Duration // 1h
	MaxConnIdleTime   time.Duration // 30m
	HealthCheckPeriod time.Duration // 1m
	ConnectTimeout    time.Duration // 10s

	// RetryTimeout bounds how long startup waits for the database to accept
	// connections (30s).
	RetryTimeout time.Duration
}

func (c *PoolConfig) pgxConfig() (*pgxpool.Config, error) {
	if c.ConnString == "" {
		return nil, errors.New("connection string is required")
	}

	cfg, err := pgxpool.ParseConfig(c.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	cfg.MaxConns = cmp.Or(c.MaxConns, 20)
	cfg.MinConns = min(cmp.Or(c.MinConns, 2), cfg.MaxConns)
	cfg.MaxConnLifetime = cmp.Or(c.MaxConnLifetime, time.Hour)
	cfg.MaxConnIdleTime = cmp.Or(c.MaxConnIdleTime, 30*time.Minute)
	cfg.HealthCheckPeriod = cmp.Or(c.HealthCheckPeriod, time.Minute)
	cfg.ConnConfig.ConnectTimeout = cmp.Or(c.ConnectTimeout, 10*time.Second)
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}
	return cfg, nil
}

// NewPool opens a pool and pings it, retrying with exponential backoff while
// the database is still coming up. Configuration errors are not retried.
func NewPool(ctx context.Context, c *PoolConfig) (*pgxpool.Pool, error) {
	if c == nil {
		return nil, errors.New("pool config is required")
	}
	cfg, err := c.pgxConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid pool config: %w", err)
	}

	connect := func() (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create connection pool: %w", err))
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return pool, nil
	}

	pool, err := backoff.Retry(ctx, connect,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(cmp.Or(c.RetryTimeout, 30*time.Second)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Dur("retry_in", next).Msg("Database not ready")
		}),
	)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", cfg.ConnConfig.Host).
		Str("database", cfg.ConnConfig.Database).
		Int32("max_conns", cfg.MaxConns).
		Msg("Connected to PostgreSQL")
	return pool, nil
}

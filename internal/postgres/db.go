package postgres

import (
	"context"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"time"
)

// Options sizes the pool; zero values fall back to a small read-mostly pool.
type Options struct {
	MaxConns    int32
	MinConns    int32
	HealthCheck time.Duration
}

func (o Options) apply(cfg *pgxpool.Config) {
	cfg.MaxConns = 4
	if o.MaxConns > 0 {
		cfg.MaxConns = o.MaxConns
	}
	cfg.MinConns = min(o.MinConns, cfg.MaxConns)
	cfg.HealthCheckPeriod = 30 * time.Second
	if o.HealthCheck > 0 {
		cfg.HealthCheckPeriod = o.HealthCheck
	}
}

// Connect opens the catalog pool and pings it before handing it out.
func Connect(ctx context.Context, dsn string, opts Options) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "Failed parse postgres dsn")
	}
	opts.apply(cfg)
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Failed create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "Failed ping postgres")
	}
	return pool, nil
}

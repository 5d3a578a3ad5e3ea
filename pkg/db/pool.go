// Package db provides the Postgres persistence of module properties and license types.
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const logPrefix = "db:pool"

// Pool defaults. Settings traffic is a few admin writes and one read per module load.
const (
	DefaultMaxConns        = 10
	DefaultMinConns        = 1
	DefaultMaxConnIdleTime = 5 * time.Minute
)

// ErrPoolOptions is returned for inconsistent pool sizes.
var ErrPoolOptions = errors.New("invalid pool options")

// PoolOptions sizes the pool. Zero fields take the defaults. ApplicationName is
// reported to Postgres so gateway sessions show up in pg_stat_activity.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
	ApplicationName string
}

// poolConfig parses databaseURL and applies opts.
func poolConfig(databaseURL string, opts PoolOptions) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to parse database URL: %w", logPrefix, err)
	}

	if opts.MaxConns == 0 {
		opts.MaxConns = DefaultMaxConns
	}
	if opts.MinConns == 0 {
		opts.MinConns = DefaultMinConns
	}
	if opts.MaxConnIdleTime == 0 {
		opts.MaxConnIdleTime = DefaultMaxConnIdleTime
	}
	if opts.MaxConns < 0 || opts.MinConns < 0 || opts.MinConns > opts.MaxConns {
		return nil, fmt.Errorf("%s - min %d / max %d connections: %w", logPrefix, opts.MinConns, opts.MaxConns, ErrPoolOptions)
	}

	config.MaxConns = opts.MaxConns
	config.MinConns = opts.MinConns
	config.MaxConnIdleTime = opts.MaxConnIdleTime
	if opts.ApplicationName != "" {
		config.ConnConfig.RuntimeParams["application_name"] = opts.ApplicationName
	}
	return config, nil
}

// NewPool creates a pgx connection pool for databaseURL and checks it with a ping.
func NewPool(ctx context.Context, databaseURL string, opts PoolOptions) (*pgxpool.Pool, error) {
	config, err := poolConfig(databaseURL, opts)
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("%s - Connecting to database (max %d, min %d connections)", logPrefix, config.MaxConns, config.MinConns))

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to create pool: %w", logPrefix, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s - failed to ping database: %w", logPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Database connection established", logPrefix))
	return pool, nil
}

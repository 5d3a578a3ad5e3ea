package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

const poolTestPrefix = "db:pool_test"

func TestNewPool_Rejects(t *testing.T) {
	tests := []struct {
		name string
		url  string
		opts PoolOptions
	}{
		{"unknown scheme", "invalid://not-a-valid-database-url", PoolOptions{}},
		{"empty", "", PoolOptions{}},
		{"bad pool option", "postgres://olat@localhost:5432/olat?pool_max_conns=many", PoolOptions{}},
		{"min above max", "postgres://olat@localhost:5432/olat", PoolOptions{MaxConns: 2, MinConns: 3}},
		{"unreachable", "postgres://olat@127.0.0.1:1/olat?connect_timeout=1", PoolOptions{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			pool, err := NewPool(ctx, tt.url, tt.opts)
			if err == nil {
				if pool != nil {
					pool.Close()
				}
				t.Fatalf("%s - expected error for %q", poolTestPrefix, tt.url)
			}
			if pool != nil {
				t.Errorf("%s - expected nil pool on error", poolTestPrefix)
			}
		})
	}
}

func TestPoolConfig_Options(t *testing.T) {
	const url = "postgres://olat@localhost:5432/olat"

	cfg, err := poolConfig(url, PoolOptions{})
	if err != nil {
		t.Fatalf("%s - unexpected error: %v", poolTestPrefix, err)
	}
	if cfg.MaxConns != DefaultMaxConns || cfg.MinConns != DefaultMinConns || cfg.MaxConnIdleTime != DefaultMaxConnIdleTime {
		t.Errorf("%s - defaults not applied: max=%d min=%d idle=%s", poolTestPrefix, cfg.MaxConns, cfg.MinConns, cfg.MaxConnIdleTime)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; ok {
		t.Errorf("%s - application_name set without option", poolTestPrefix)
	}

	cfg, err = poolConfig(url, PoolOptions{MaxConns: 4, MinConns: 2, MaxConnIdleTime: time.Minute, ApplicationName: "olat-gateway"})
	if err != nil {
		t.Fatalf("%s - unexpected error: %v", poolTestPrefix, err)
	}
	if cfg.MaxConns != 4 || cfg.MinConns != 2 || cfg.MaxConnIdleTime != time.Minute {
		t.Errorf("%s - options not applied: max=%d min=%d idle=%s", poolTestPrefix, cfg.MaxConns, cfg.MinConns, cfg.MaxConnIdleTime)
	}
	if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != "olat-gateway" {
		t.Errorf("%s - application_name = %q", poolTestPrefix, got)
	}

	if _, err := poolConfig(url, PoolOptions{MaxConns: -1}); !errors.Is(err, ErrPoolOptions) {
		t.Errorf("%s - expected ErrPoolOptions, got %v", poolTestPrefix, err)
	}
}

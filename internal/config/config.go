// Package config provides gateway configuration loaded from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/openolat/olat-gateway/pkg/db"
)

const logPrefix = "config:LoadConfig"

// Config holds olat-gateway configuration.
type Config struct {
	// URIPrefix is the mount point of the dispatch front, e.g. "/olat/".
	URIPrefix string `envconfig:"URI_PREFIX" default:"/olat/"`

	// COMMS: connect to standalone NATS at COMMSURL.
	COMMSURL  string `envconfig:"COMMS_URL" default:"nats://127.0.0.1:4222"`
	COMMSName string `envconfig:"SERVICE_NAME" default:"olat-gateway"`

	GatewaySubject      string `envconfig:"GATEWAY_SUBJECT" default:"olat.gateway.v1"`
	ModuleChangeSubject string `envconfig:"MODULE_CHANGE_SUBJECT" default:"olat.modules.changed"`

	// Timeouts
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"25s"`

	// Database (empty = in-memory settings store)
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"false"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"migrations"`

	// Pool sizing
	DBMaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns        int32         `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"5m"`

	// Seed file with module defaults; empty = search the default locations.
	SeedFile string `envconfig:"SEED_FILE"`

	// StaticDir serves non-dispatch URLs under URIPrefix when set.
	StaticDir string `envconfig:"STATIC_DIR"`

	// ManualURL overrides the base URL of the online manual.
	ManualURL string `envconfig:"MANUAL_URL"`

	HTTPPort           int           `envconfig:"HTTP_PORT" default:"8080"`
	HealthCheckTimeout time.Duration `envconfig:"HEALTH_CHECK_TIMEOUT" default:"5s"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ValidateForServe checks required config when running the gateway server.
func (c *Config) ValidateForServe() error {
	if err := c.ValidatePrefix(); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - REQUEST_TIMEOUT must be positive", logPrefix)
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("%s - HEALTH_CHECK_TIMEOUT must be positive", logPrefix)
	}
	if c.GatewaySubject == "" {
		return fmt.Errorf("%s - GATEWAY_SUBJECT must not be empty", logPrefix)
	}
	return nil
}

// ValidatePrefix checks that URI_PREFIX starts and ends with a slash.
func (c *Config) ValidatePrefix() error {
	if !strings.HasPrefix(c.URIPrefix, "/") || !strings.HasSuffix(c.URIPrefix, "/") {
		return fmt.Errorf("%s - URI_PREFIX must start and end with '/', got %q", logPrefix, c.URIPrefix)
	}
	return nil
}

// ValidateForDB checks required config when running DB-dependent commands (migrate, clear, seed).
func (c *Config) ValidateForDB() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s - DATABASE_URL is required", logPrefix)
	}
	return nil
}

// PoolOptions returns the database pool settings; sessions are tagged with the
// service name.
func (c *Config) PoolOptions() db.PoolOptions {
	return db.PoolOptions{
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnIdleTime: c.DBMaxConnIdleTime,
		ApplicationName: c.COMMSName,
	}
}

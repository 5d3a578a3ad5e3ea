package config

import (
	"os"
	"testing"
	"time"
)

var envVars = []string{
	"URI_PREFIX", "COMMS_URL", "SERVICE_NAME",
	"GATEWAY_SUBJECT", "MODULE_CHANGE_SUBJECT", "REQUEST_TIMEOUT",
	"DATABASE_URL", "RUN_MIGRATIONS", "MIGRATION_PATH",
	"SEED_FILE", "STATIC_DIR", "MANUAL_URL",
	"HTTP_PORT", "HEALTH_CHECK_TIMEOUT", "LOG_LEVEL",
	"DB_MAX_CONNS", "DB_MIN_CONNS", "DB_MAX_CONN_IDLE_TIME",
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, env := range envVars {
		os.Unsetenv(env)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if cfg.URIPrefix != "/olat/" {
		t.Errorf("config:config_test - URIPrefix = %q, want %q", cfg.URIPrefix, "/olat/")
	}
	if cfg.COMMSURL != "nats://127.0.0.1:4222" {
		t.Errorf("config:config_test - COMMSURL = %q, want %q", cfg.COMMSURL, "nats://127.0.0.1:4222")
	}
	if cfg.COMMSName != "olat-gateway" {
		t.Errorf("config:config_test - COMMSName = %q, want %q", cfg.COMMSName, "olat-gateway")
	}
	if cfg.GatewaySubject != "olat.gateway.v1" {
		t.Errorf("config:config_test - GatewaySubject = %q, want %q", cfg.GatewaySubject, "olat.gateway.v1")
	}
	if cfg.ModuleChangeSubject != "olat.modules.changed" {
		t.Errorf("config:config_test - ModuleChangeSubject = %q, want %q", cfg.ModuleChangeSubject, "olat.modules.changed")
	}
	if cfg.RequestTimeout != 25*time.Second {
		t.Errorf("config:config_test - RequestTimeout = %v, want 25s", cfg.RequestTimeout)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("config:config_test - DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.RunMigrations {
		t.Error("config:config_test - expected RunMigrations=false by default")
	}
	if cfg.MigrationPath != "migrations" {
		t.Errorf("config:config_test - MigrationPath = %q, want %q", cfg.MigrationPath, "migrations")
	}
	if cfg.SeedFile != "" || cfg.StaticDir != "" || cfg.ManualURL != "" {
		t.Errorf("config:config_test - expected empty SeedFile, StaticDir and ManualURL, got %q %q %q", cfg.SeedFile, cfg.StaticDir, cfg.ManualURL)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("config:config_test - HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.HealthCheckTimeout != 5*time.Second {
		t.Errorf("config:config_test - HealthCheckTimeout = %v, want 5s", cfg.HealthCheckTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("config:config_test - LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	overrides := map[string]string{
		"URI_PREFIX":            "/app/",
		"COMMS_URL":             "nats://custom:4222",
		"SERVICE_NAME":          "test-gateway",
		"GATEWAY_SUBJECT":       "custom.gateway",
		"MODULE_CHANGE_SUBJECT": "custom.changed",
		"REQUEST_TIMEOUT":       "10s",
		"DATABASE_URL":          "postgres://test@localhost/test",
		"RUN_MIGRATIONS":        "true",
		"MIGRATION_PATH":        "/tmp/migrations",
		"SEED_FILE":             "/tmp/seed.yaml",
		"STATIC_DIR":            "/srv/static",
		"MANUAL_URL":            "https://manual.example.org/",
		"HTTP_PORT":             "9090",
		"HEALTH_CHECK_TIMEOUT":  "10s",
		"LOG_LEVEL":             "debug",
	}

	for key, val := range overrides {
		os.Setenv(key, val)
	}
	defer func() {
		for key := range overrides {
			os.Unsetenv(key)
		}
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if cfg.URIPrefix != "/app/" {
		t.Errorf("config:config_test - URIPrefix = %q, want %q", cfg.URIPrefix, "/app/")
	}
	if cfg.COMMSURL != "nats://custom:4222" {
		t.Errorf("config:config_test - COMMSURL = %q, want %q", cfg.COMMSURL, "nats://custom:4222")
	}
	if cfg.COMMSName != "test-gateway" {
		t.Errorf("config:config_test - COMMSName = %q, want %q", cfg.COMMSName, "test-gateway")
	}
	if cfg.GatewaySubject != "custom.gateway" {
		t.Errorf("config:config_test - GatewaySubject = %q, want %q", cfg.GatewaySubject, "custom.gateway")
	}
	if cfg.ModuleChangeSubject != "custom.changed" {
		t.Errorf("config:config_test - ModuleChangeSubject = %q, want %q", cfg.ModuleChangeSubject, "custom.changed")
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("config:config_test - RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.DatabaseURL != "postgres://test@localhost/test" {
		t.Errorf("config:config_test - DatabaseURL = %q, unexpected", cfg.DatabaseURL)
	}
	if !cfg.RunMigrations {
		t.Error("config:config_test - expected RunMigrations=true")
	}
	if cfg.MigrationPath != "/tmp/migrations" {
		t.Errorf("config:config_test - MigrationPath = %q, want %q", cfg.MigrationPath, "/tmp/migrations")
	}
	if cfg.SeedFile != "/tmp/seed.yaml" {
		t.Errorf("config:config_test - SeedFile = %q, want %q", cfg.SeedFile, "/tmp/seed.yaml")
	}
	if cfg.StaticDir != "/srv/static" {
		t.Errorf("config:config_test - StaticDir = %q, want %q", cfg.StaticDir, "/srv/static")
	}
	if cfg.ManualURL != "https://manual.example.org/" {
		t.Errorf("config:config_test - ManualURL = %q, unexpected", cfg.ManualURL)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("config:config_test - HTTPPort = %d, want 9090", cfg.HTTPPort)
	}
	if cfg.HealthCheckTimeout != 10*time.Second {
		t.Errorf("config:config_test - HealthCheckTimeout = %v, want 10s", cfg.HealthCheckTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("config:config_test - LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoadConfig_LogLevels(t *testing.T) {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, level := range validLevels {
		os.Setenv("LOG_LEVEL", level)
		cfg, err := LoadConfig()
		os.Unsetenv("LOG_LEVEL")

		if err != nil {
			t.Fatalf("config:config_test - unexpected error for level %q: %v", level, err)
		}
		if cfg.LogLevel != level {
			t.Errorf("config:config_test - LogLevel = %q, want %q", cfg.LogLevel, level)
		}
	}
}

func TestValidateForServe(t *testing.T) {
	valid := func() Config {
		return Config{
			URIPrefix:          "/olat/",
			GatewaySubject:     "olat.gateway.v1",
			RequestTimeout:     time.Second,
			HealthCheckTimeout: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid without database", func(c *Config) {}, false},
		{"root prefix", func(c *Config) { c.URIPrefix = "/" }, false},
		{"prefix without leading slash", func(c *Config) { c.URIPrefix = "olat/" }, true},
		{"prefix without trailing slash", func(c *Config) { c.URIPrefix = "/olat" }, true},
		{"empty prefix", func(c *Config) { c.URIPrefix = "" }, true},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"negative health timeout", func(c *Config) { c.HealthCheckTimeout = -time.Second }, true},
		{"empty subject", func(c *Config) { c.GatewaySubject = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.ValidateForServe()
			if (err != nil) != tt.wantErr {
				t.Errorf("config:config_test - ValidateForServe() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateForDB(t *testing.T) {
	c := &Config{}
	if err := c.ValidateForDB(); err == nil {
		t.Error("config:config_test - expected error for empty DATABASE_URL")
	}
	c.DatabaseURL = "postgres://localhost/olat"
	if err := c.ValidateForDB(); err != nil {
		t.Errorf("config:config_test - unexpected error: %v", err)
	}
}

func TestPoolOptions(t *testing.T) {
	for _, env := range envVars {
		os.Unsetenv(env)
	}
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("SERVICE_NAME", "olat-gateway-2")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}
	opts := cfg.PoolOptions()
	if opts.MaxConns != 4 || opts.MinConns != 1 || opts.MaxConnIdleTime != 5*time.Minute {
		t.Errorf("config:config_test - PoolOptions = %+v", opts)
	}
	if opts.ApplicationName != "olat-gateway-2" {
		t.Errorf("config:config_test - ApplicationName = %q, want %q", opts.ApplicationName, "olat-gateway-2")
	}
}

// Package main is the entrypoint for the olat-gateway.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openolat/olat-gateway/internal/config"
	"github.com/openolat/olat-gateway/internal/server"
	"github.com/openolat/olat-gateway/pkg/db"
	"github.com/openolat/olat-gateway/pkg/license"
	"github.com/openolat/olat-gateway/pkg/seed"
	"github.com/openolat/olat-gateway/pkg/userrequest"
)

const usage = `Usage: olat-gateway [command]
       olat-gateway serve                   Start the gateway (COMMS, HTTP, admin API).
       olat-gateway migrate up              Run database migrations.
       olat-gateway migrate down            Roll back one migration (migrations are forward-only).
       olat-gateway migrate status          Show migration status.
       olat-gateway ensure-db [name]        Create database if missing. Uses DATABASE_URL host/user.
       olat-gateway clear                   Truncate module properties and license types; schema is preserved.
       olat-gateway seed [file]             Write missing module properties from a seed file.
       olat-gateway init-licenses           Create the predefined license types.
       olat-gateway decode <path> [k=v ...] Decode a request path under URI_PREFIX and print it.

Commands:
  serve           (default) Start the gateway.
  migrate up      Run database migrations only.
  migrate down    Print the rollback note.
  migrate status  Show current migration status.
  ensure-db [name] Create database (default: the one in DATABASE_URL) on the same host.
  clear           Truncate settings data; schema preserved.
  seed [file]     Seed module properties (default: SEED_FILE or config/seed.yaml).
  init-licenses   Create missing predefined license types.
  decode <path>   Offline decoding aid; exits non-zero when the path is rejected.

Environment: DATABASE_URL (empty = in-memory settings), URI_PREFIX (default /olat/), COMMS_URL,
MIGRATION_PATH, DB_MAX_CONNS, SEED_FILE, STATIC_DIR, HTTP_PORT (default 8080).
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "migrate":
		if len(args) < 2 {
			log.Fatalf("olat-gateway migrate: require subcommand (up, down, status)")
		}
		sub := args[1]
		switch sub {
		case "up":
			if err := withPool(runMigrateUp); err != nil {
				log.Fatalf("olat-gateway migrate up: %v", err)
			}
		case "status":
			if err := withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				return db.MigrationStatus(ctx, pool, cfg.MigrationPath)
			}); err != nil {
				log.Fatalf("olat-gateway migrate status: %v", err)
			}
		case "down":
			if err := withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				return db.MigrationDown(ctx, pool, cfg.MigrationPath)
			}); err != nil {
				log.Fatalf("olat-gateway migrate down: %v", err)
			}
		default:
			log.Fatalf("olat-gateway migrate: unknown subcommand %q (use up, down, status)", sub)
		}
		return
	case "clear":
		if err := withPool(func(ctx context.Context, _ *config.Config, pool *pgxpool.Pool) error {
			return db.ClearSettings(ctx, pool)
		}); err != nil {
			log.Fatalf("olat-gateway clear: %v", err)
		}
		return
	case "seed":
		seedFile := ""
		if len(args) > 1 {
			seedFile = args[1]
		}
		if err := withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
			return runSeed(ctx, cfg, pool, seedFile)
		}); err != nil {
			log.Fatalf("olat-gateway seed: %v", err)
		}
		return
	case "init-licenses":
		if err := withPool(runInitLicenses); err != nil {
			log.Fatalf("olat-gateway init-licenses: %v", err)
		}
		return
	case "ensure-db":
		dbName := ""
		if len(args) > 1 {
			dbName = args[1]
		}
		if err := runEnsureDB(dbName); err != nil {
			log.Fatalf("olat-gateway ensure-db: %v", err)
		}
		return
	case "decode":
		if len(args) < 2 {
			log.Fatalf("olat-gateway decode: require a path")
		}
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("olat-gateway decode: load config: %v", err)
		}
		if err := runDecode(os.Stdout, cfg.URIPrefix, args[1], args[2:]); err != nil {
			log.Fatalf("olat-gateway decode: %v", err)
		}
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "serve", "":
		// serve (explicit or default)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		log.Fatalf("olat-gateway: %v", err)
	}
}

// withPool loads the config, requires DATABASE_URL and runs fn with a pool.
func withPool(fn func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	server.SetupLogging(cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.PoolOptions())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	return fn(ctx, cfg, pool)
}

func runMigrateUp(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
	migrations, err := db.LoadMigrations(cfg.MigrationPath)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	if err := db.RunMigrations(ctx, pool, migrations); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func runSeed(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, fileOverride string) error {
	path := fileOverride
	if path == "" {
		path = cfg.SeedFile
	}
	f, err := seed.Load(path)
	if err != nil {
		return err
	}
	n, err := seed.Apply(ctx, db.NewPropertyStore(pool), f)
	if err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	fmt.Printf("Seed %q applied: %d properties written.\n", f.Name, n)
	return nil
}

func runInitLicenses(ctx context.Context, _ *config.Config, pool *pgxpool.Pool) error {
	n, err := license.InitPredefined(ctx, db.NewLicenseRepository(pool))
	if err != nil {
		return err
	}
	fmt.Printf("Created %d license types.\n", n)
	return nil
}

func runEnsureDB(dbName string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	if err := db.EnsureDatabase(context.Background(), cfg.DatabaseURL, dbName); err != nil {
		return err
	}
	if dbName == "" {
		dbName = "from DATABASE_URL"
	}
	fmt.Printf("Database %q is ready.\n", dbName)
	return nil
}

// runDecode decodes path with optional key=value request parameters and writes the
// descriptor as indented JSON.
func runDecode(w io.Writer, uriPrefix, path string, pairs []string) error {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return fmt.Errorf("parameter %q is not key=value", pair)
		}
		params[k] = v
	}

	req, err := userrequest.Parse(uriPrefix, path, params)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(req.Descriptor())
}

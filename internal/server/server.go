// Package server orchestrates all components: COMMS client, DB, settings modules,
// dispatcher and the HTTP front.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	comms "github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/openolat/olat-gateway/internal/config"
	"github.com/openolat/olat-gateway/pkg/db"
	"github.com/openolat/olat-gateway/pkg/dispatcher"
	"github.com/openolat/olat-gateway/pkg/events"
	"github.com/openolat/olat-gateway/pkg/license"
	"github.com/openolat/olat-gateway/pkg/seed"
	"github.com/openolat/olat-gateway/pkg/settings"
	"github.com/openolat/olat-gateway/pkg/userrequest"
)

const logPrefix = "server:server"

// queueGroup lets several gateway nodes share the gateway subject.
const queueGroup = "olat-gateway"

// Server is the olat-gateway orchestrator.
type Server struct {
	cfg        *config.Config
	nc         *comms.Conn
	pool       *pgxpool.Pool
	httpServer *http.Server
}

// SetupLogging installs the default slog handler for level.
func SetupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

// Run starts the server, blocks until shutdown signal, then cleans up.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	SetupLogging(cfg.LogLevel)
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	slog.Info(fmt.Sprintf("%s - Starting olat-gateway (prefix %s)", logPrefix, cfg.URIPrefix))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Server{cfg: cfg}
	defer s.close()

	// Step 1: Connect to COMMS
	nc, err := s.connectComms()
	if err != nil {
		return err
	}
	s.nc = nc

	// Step 2: Settings store and license repository (Postgres or memory)
	store, licenses, err := s.openStores(ctx)
	if err != nil {
		return err
	}

	// Step 3: Seed file
	seedFile, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("%s - failed to load seed: %w", logPrefix, err)
	}

	// Step 4: Metrics
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := userrequest.NewMetrics(promRegistry)
	if err != nil {
		return fmt.Errorf("%s - failed to register metrics: %w", logPrefix, err)
	}

	// Step 5: Modules
	publisher := events.NewCommsPublisher(nc, &events.CommsPublisherOpts{GlobalChangeSubject: cfg.ModuleChangeSubject})
	comps, err := BuildComponents(ctx, ComponentsParams{
		URIPrefix: cfg.URIPrefix,
		ManualURL: cfg.ManualURL,
		Store:     store,
		Licenses:  licenses,
		Publisher: publisher,
		Metrics:   metrics,
		Seed:      seedFile,
	})
	if err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("%s - Modules loaded (node %s)", logPrefix, comps.Origin))

	// Step 6: Reload modules on changes from other nodes
	reloadSub, err := comps.Reloader.Subscribe(ctx, nc, publisher.GlobalSubject())
	if err != nil {
		return err
	}
	defer reloadSub.Unsubscribe()

	// Step 7: Dispatcher
	health := s.healthFunc()
	disp := dispatcher.NewDispatcher(comps.Services(health))
	sub, err := SubscribeDispatcher(ctx, nc, cfg.GatewaySubject, queueGroup, disp, cfg.RequestTimeout)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	// Step 8: HTTP front
	handler := NewRouter(RouterParams{
		Components:         comps,
		Dispatcher:         disp,
		Health:             health,
		Gatherer:           promRegistry,
		StaticDir:          cfg.StaticDir,
		HealthCheckTimeout: cfg.HealthCheckTimeout,
	})
	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	s.httpServer = &http.Server{Addr: httpAddr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - olat-gateway is ready", logPrefix))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer shutdownCancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn(fmt.Sprintf("%s - HTTP shutdown: %v", logPrefix, err))
	}

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

func (s *Server) connectComms() (*comms.Conn, error) {
	nc, err := commsConnect(s.cfg.COMMSURL, s.cfg.COMMSName)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
	}
	return nc, nil
}

// openStores returns the Postgres-backed stores when DATABASE_URL is set and the
// in-memory ones otherwise.
func (s *Server) openStores(ctx context.Context) (settings.Store, license.Repository, error) {
	if s.cfg.DatabaseURL == "" {
		slog.Warn(fmt.Sprintf("%s - DATABASE_URL not set, settings are kept in memory", logPrefix))
		return settings.NewMemoryStore(), license.NewMemoryRepository(), nil
	}

	pool, err := db.NewPool(ctx, s.cfg.DatabaseURL, s.cfg.PoolOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("%s - failed to connect to database: %w", logPrefix, err)
	}
	s.pool = pool

	if s.cfg.RunMigrations {
		migrations, err := db.LoadMigrations(s.cfg.MigrationPath)
		if err != nil {
			return nil, nil, fmt.Errorf("%s - failed to load migrations: %w", logPrefix, err)
		}
		if err := db.RunMigrations(ctx, pool, migrations); err != nil {
			return nil, nil, fmt.Errorf("%s - failed to run migrations: %w", logPrefix, err)
		}
	}
	return db.NewPropertyStore(pool), db.NewLicenseRepository(pool), nil
}

// healthFunc reports COMMS and database state. The gateway is healthy when every
// configured dependency answers.
func (s *Server) healthFunc() dispatcher.HealthFunc {
	return func(ctx context.Context) map[string]interface{} {
		checks := map[string]bool{"comms": s.nc != nil && s.nc.IsConnected()}
		if s.pool != nil {
			checks["database"] = s.pool.Ping(ctx) == nil
		}
		status := "healthy"
		for _, ok := range checks {
			if !ok {
				status = "unhealthy"
			}
		}
		return map[string]interface{}{
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
	}
}

func (s *Server) close() {
	if s.nc != nil {
		if err := s.nc.Drain(); err != nil {
			s.nc.Close()
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

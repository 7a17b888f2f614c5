package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/fixify/ui-core/config"
	"github.com/fixify/ui-core/internal/bootstrap"
	"github.com/fixify/ui-core/internal/devseed"
	"github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/routegate"
	"github.com/fixify/ui-core/internal/service"
	"github.com/fixify/ui-core/internal/session"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	db, redisClient, err := initInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	if cfg.Postgres.RunMigrationsOnStart {
		if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
			return err
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	backend, err := bootstrap.BuildSessionBackend(ctx, bootstrap.SessionBackendConfig{
		Auth:   cfg.Auth,
		IsDev:  cfg.IsDev,
		DB:     db,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("build session backend: %w", err)
	}
	defer backend.Close()

	services, err := bootstrap.BuildServices(bootstrap.ServiceDeps{
		DB:     db,
		Files:  backend.Files,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}

	if cfg.IsDev {
		seed := devseed.Services{
			Profiles: services.Profiles,
			Catalog:  services.Catalog,
			Bookings: services.Bookings,
		}
		if err = devseed.Run(ctx, seed, logger); err != nil {
			logger.WarnContext(ctx, "dev seeding failed", "error", err)
		}
	}

	controller, err := bootstrap.BuildSessionController(bootstrap.SessionConfig{
		Session:     cfg.Session,
		Backend:     backend,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("build session controller: %w", err)
	}
	defer controller.Close()

	gate := bootstrap.BuildRouteGate(cfg.Routes)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller.Start(runCtx)
	logger.InfoContext(runCtx, "session core started", "auth_mode", cfg.Auth.Mode)

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return watchSession(gCtx, controller, gate, services.Catalog, logger)
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.InfoContext(ctx, "shutting down")
	return nil
}

// watchSession periodically logs the session state, the gate's decision for
// the admin area, and the size of the live catalog, making the reconciliation
// loop observable in dev.
func watchSession(
	ctx context.Context,
	controller *session.Controller,
	gate *routegate.Gate,
	catalog *service.CatalogService,
	logger *slog.Logger,
) error {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			st := controller.State()
			out := gate.Evaluate([]auth.Role{auth.RoleAdmin}, gate.Paths().AdminHome, st)

			attrs := []any{
				"loading", st.Loading,
				"signed_in", st.User != nil,
				"admin_gate", out.State,
			}
			if st.User != nil {
				attrs = append(attrs, "user_id", st.User.ID, "role", st.User.Role)
			}
			if active, err := catalog.ListActiveServices(ctx, ""); err != nil {
				logger.WarnContext(ctx, "list active services failed", "error", err)
			} else {
				attrs = append(attrs, "active_services", len(active))
			}
			logger.InfoContext(ctx, "session state", attrs...)
		}
	}
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting fixify session core",
		"db_host", cfg.Postgres.Host,
		"db_port", cfg.Postgres.Port,
		"db_name", cfg.Postgres.Name,
		"auth_mode", cfg.Auth.Mode,
		"dev", cfg.IsDev)
}

// initInfrastructure connects shared dependencies used by the session core.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func initInfrastructure(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*sql.DB, redis.UniversalClient, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig:    cfg.Postgres,
		RedisConfig: cfg.Redis,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}

	redisClient, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		DBConfig:    cfg.Postgres,
		RedisConfig: cfg.Redis,
		Logger:      logger,
	})
	if err != nil {
		// The session marker is optional; run without cross-context sync.
		logger.WarnContext(ctx, "redis unavailable, session marker disabled", "error", err)
		return db, nil, nil
	}

	return db, redisClient, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/kpvarma/ecoas-forge-sub000/internal/api"
	"github.com/kpvarma/ecoas-forge-sub000/internal/auth"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa"
	"github.com/kpvarma/ecoas-forge-sub000/internal/config"
	"github.com/kpvarma/ecoas-forge-sub000/internal/database"
	"github.com/kpvarma/ecoas-forge-sub000/internal/mockdata"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			setupLogging(cfg.Log, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}
}

func setupLogging(cfg config.LogConfig, w io.Writer) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

// openStores connects the configured entity backend. db is nil for the
// memory backend.
func openStores(cfg *config.Config) (coa.Stores, *gorm.DB, error) {
	if cfg.Store.Backend == config.StoreMemory {
		slog.Info("using in-memory stores")
		return coa.NewMemoryStores(), nil, nil
	}

	slog.Info("connecting to database",
		"driver", cfg.Database.Driver,
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
	)
	db, err := database.New(&cfg.Database)
	if err != nil {
		return coa.Stores{}, nil, err
	}
	if err := database.HealthCheck(db); err != nil {
		_ = database.Close(db)
		return coa.Stores{}, nil, fmt.Errorf("database health check failed: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return coa.Stores{}, nil, err
	}
	return coa.NewGormStores(db), db, nil
}

func newManager(ctx context.Context, cfg *config.Config, stores coa.Stores) (*coa.Manager, error) {
	driver, err := uploads.NewStorageFromConfig(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	return coa.NewManager(stores, uploads.NewUploadService(driver, cfg.Server.MaxUploadBytes), tokens, cfg.Server.StrictPaging), nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	stores, db, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	manager, err := newManager(ctx, cfg, stores)
	if err != nil {
		return err
	}
	if cfg.Store.Seed {
		ds := mockdata.New(cfg.Store.MockSeed, time.Now()).Dataset(cfg.Store.MockSize)
		report, err := manager.Seed(ctx, ds, true)
		if err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
		slog.Info("seeded demo data",
			"users", report.Users,
			"requests", report.Requests,
			"templates", report.Templates,
			"responsibilities", report.Responsibilities,
			"files", report.Files,
			"skipped", report.Skipped,
		)
	}

	slog.Info("CORS configuration",
		"allowed_origins", cfg.CORS.AllowedOrigins,
		"allow_credentials", cfg.CORS.AllowCredentials,
	)
	engine := api.NewEngine(api.Options{
		CORS:      cfg.CORS,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		DB:        db,
	})
	manager.RegisterRoutes(engine.Group("/api"))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "port", cfg.Server.Port, "service_url", cfg.Server.ServiceURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return err
	}
	slog.Info("server gracefully stopped")
	return nil
}

// Package main is the entry point for the quotation engine service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen/quote-engine/internal/adapters/clients"
	"github.com/jsamuelsen/quote-engine/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-engine/internal/adapters/flags"
	"github.com/jsamuelsen/quote-engine/internal/adapters/http"
	"github.com/jsamuelsen/quote-engine/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-engine/internal/adapters/persistence"
	"github.com/jsamuelsen/quote-engine/internal/app"
	"github.com/jsamuelsen/quote-engine/internal/platform/config"
	"github.com/jsamuelsen/quote-engine/internal/platform/logging"
	"github.com/jsamuelsen/quote-engine/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-engine/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("persistence", cfg.Persistence.Driver),
	)

	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	store, err := persistence.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening quotation store: %w", err)
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("closing quotation store", slog.Any("error", closeErr))
		}
	}()

	healthRegistry := ports.NewHealthRegistry(0)
	if err := healthRegistry.Register(store); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}

	sessionCfg := app.SessionServiceConfig{
		Store:            store,
		Flags:            flags.NewStatic(cfg.Features),
		Executor:         app.NewExecutor(logger),
		Logger:           logger,
		HistoryCapacity:  cfg.Engine.HistoryCapacity,
		ReconcileTimeout: cfg.Engine.ReconcileTimeout,
		FlushWorkers:     cfg.Engine.FlushWorkers,
	}

	// Without an assistant every message is handled by the local interpreter.
	if cfg.Services.Assistant.Enabled {
		assistant, err := newAssistant(cfg, logger)
		if err != nil {
			return err
		}

		if err := healthRegistry.Register(assistant); err != nil {
			return fmt.Errorf("registering assistant health check: %w", err)
		}

		sessionCfg.Assistant = assistant
	}

	sessions := app.NewSessionService(sessionCfg)

	server := http.New(&cfg.Server, logger)

	routerCfg := http.NewDefaultRouterConfig(
		logger,
		&cfg.App,
		handlers.NewHealthHandler(healthRegistry, handlers.NewBuildInfo(Version, Commit, BuildTime)),
		handlers.NewSessionHandler(sessions),
	)
	routerCfg.Timeout = cfg.Server.RequestTimeout
	http.SetupRouter(server.Engine(), routerCfg)

	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	return waitForShutdown(ctx, logger, server, sessions, serverErr, cfg.Server.ShutdownTimeout)
}

func newAssistant(cfg *config.Config, logger *slog.Logger) (*acl.AssistantClient, error) {
	httpClient, err := clients.New(clients.ConfigFor(&cfg.Client, &cfg.Services.Assistant, logger))
	if err != nil {
		return nil, fmt.Errorf("creating assistant client: %w", err)
	}

	return acl.NewAssistantClient(httpClient, cfg.Services.Assistant.Name), nil
}

// waitForShutdown blocks until a signal or a server error, then drains HTTP
// traffic and flushes every open session to the store.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	sessions *app.SessionService,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := sessions.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("flushing sessions: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}

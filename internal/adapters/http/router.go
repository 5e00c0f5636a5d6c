package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-engine/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-engine/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-engine/internal/platform/config"
	"github.com/jsamuelsen/quote-engine/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds /api/v1 requests when none is configured.
const DefaultRequestTimeout = 30 * time.Second

// probePaths are kept out of the request log.
var probePaths = []string{"/-/live", "/-/ready", "/-/metrics"}

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	Logger    *slog.Logger
	AppConfig *config.AppConfig

	HealthHandler  *handlers.HealthHandler
	SessionHandler *handlers.SessionHandler

	// Timeout bounds each /api/v1 request. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures middleware and routes on the engine.
// Middleware order (first to last):
//  1. Recovery
//  2. ContextLogger, so later middleware can enrich the request logger
//  3. Request ID and correlation ID
//  4. OpenTelemetry tracing and request metrics
//  5. Logging (skips probes)
//
// Route groups:
//   - /-/ probes, build info and metrics, no timeout
//   - /api/v1/ the session API, with the request timeout
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(noRoute)
	engine.NoMethod(noMethod)

	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)

	if cfg.AppConfig != nil {
		engine.Use(telemetry.Middleware(cfg.AppConfig.Name)...)
	}

	engine.Use(middleware.Logging(cfg.Logger, probePaths...))

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.SessionHandler != nil {
		cfg.SessionHandler.RegisterSessionRoutes(apiV1)
	}
}

// SetupMinimalRouter registers only recovery, request IDs and the probes.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.NoRoute(noRoute)
	engine.Use(
		middleware.Recovery(logger),
		middleware.ContextLogger(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with the default timeout.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	healthHandler *handlers.HealthHandler,
	sessionHandler *handlers.SessionHandler,
) RouterConfig {
	return RouterConfig{
		Logger:         logger,
		AppConfig:      appCfg,
		HealthHandler:  healthHandler,
		SessionHandler: sessionHandler,
		Timeout:        DefaultRequestTimeout,
	}
}

// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tharavad/dues-api/internal/auth"
	"github.com/tharavad/dues-api/internal/config"
	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/dashboard"
	"github.com/tharavad/dues-api/internal/health"
	"github.com/tharavad/dues-api/internal/member"
	"github.com/tharavad/dues-api/internal/middleware"
	"github.com/tharavad/dues-api/internal/payment"
	"github.com/tharavad/dues-api/internal/server"
	"github.com/tharavad/dues-api/internal/store"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	if _, statErr := os.Stat(configPath); errors.Is(statErr, fs.ErrNotExist) {
		configPath = ""
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"store", cfg.Store.Driver,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("store connected", "driver", backend.Driver)

	var rdb *core.Redis
	if cfg.Redis.URL != "" {
		rdb, err = core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting in process",
				"error", err,
			)
			rdb = nil
		} else {
			logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
		}
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "HS256",
		"expires_in", cfg.JWT.AccessTokenExpire,
	)

	var healthHandler *health.Handler
	var redisClient *redis.Client
	if rdb != nil {
		healthHandler = health.NewHandler(backend, rdb)
		redisClient = rdb.Client
	} else {
		healthHandler = health.NewHandler(backend, nil)
	}
	healthHandler.SetReady(false)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	mountRoutes(ctx, srv.Router(), routeDeps{
		cfg:     cfg,
		backend: backend,
		jwt:     jwtManager,
		health:  healthHandler,
		redis:   redisClient,
		logger:  logger,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	if err := prepareStore(ctx, backend, cfg.Admin, logger); err != nil {
		//nolint:errcheck // aborting startup
		_ = srv.Shutdown(context.Background(), 0)
		//nolint:errcheck // aborting startup
		_ = backend.Close()
		return err
	}
	healthHandler.SetReady(true)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := rdb.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := backend.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// prepareStore migrates the schema and ensures the configured admin exists.
// Readiness stays off until it returns.
func prepareStore(
	ctx context.Context,
	backend *store.Backend,
	admin config.AdminConfig,
	logger *slog.Logger,
) error {
	if err := backend.Migrate(ctx); err != nil {
		return err
	}
	return bootstrapAdmin(ctx, backend.Admins, admin, logger)
}

// bootstrapAdmin creates the configured admin when the password is set.
// An account that already exists keeps its stored password.
func bootstrapAdmin(
	ctx context.Context,
	admins auth.AdminRepository,
	admin config.AdminConfig,
	logger *slog.Logger,
) error {
	if admin.Password == "" {
		logger.Info("admin bootstrap skipped, no password configured")
		return nil
	}

	_, err := auth.NewService(admins, nil).
		CreateAdmin(ctx, admin.Username, admin.Password)
	switch {
	case errors.Is(err, auth.ErrAdminExists):
		logger.Info("admin already present", "username", admin.Username)
		return nil
	case err != nil:
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	logger.Info("admin created", "username", admin.Username)
	return nil
}

type routeDeps struct {
	cfg     *config.Config
	backend *store.Backend
	jwt     *auth.JWTManager
	health  *health.Handler
	redis   *redis.Client
	logger  *slog.Logger
}

func mountRoutes(ctx context.Context, router chi.Router, d routeDeps) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(d.logger))
	router.Use(middleware.Recoverer(d.logger))

	var metrics *middleware.Metrics
	if d.cfg.Metrics.Enabled {
		metrics = middleware.NewMetrics("dues")
		router.Use(metrics.Middleware)
	}

	if d.cfg.RateLimit.Enabled {
		router.Use(
			middleware.NewRateLimiter(ctx, d.redis, middleware.RateLimitConfig{
				Limit: middleware.Per(
					d.cfg.RateLimit.Requests,
					d.cfg.RateLimit.Window,
					d.cfg.RateLimit.Burst,
				),
				FailOpen:   true,
				BypassFunc: isHealthCheck,
			}).Handler,
		)
	}

	router.Use(middleware.SecurityHeaders(d.cfg.IsProduction()))
	router.Use(middleware.CORS(d.cfg.CORS))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		core.JSONError(w, core.NotFoundError("route"))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		core.JSONError(w, core.NewAppError(
			nil,
			"method not allowed",
			http.StatusMethodNotAllowed,
			"METHOD_NOT_ALLOWED",
		))
	})

	d.health.RegisterRoutes(router)
	if metrics != nil {
		router.Method(http.MethodGet, d.cfg.Metrics.Path, metrics.Handler())
	}

	memberRepo := d.backend.Members
	paymentRepo := d.backend.Payments

	memberSvc := member.NewService(memberRepo, paymentRepo, member.DuesPolicy{
		Years:  d.cfg.Dues.ProvisionYears,
		Amount: d.cfg.Dues.DefaultAmount,
	})
	paymentSvc := payment.NewService(paymentRepo, memberSvc)
	dashboardSvc := dashboard.NewService(
		memberSvc,
		paymentSvc,
		d.cfg.Dues.DashboardYears,
	)
	authSvc := auth.NewService(d.backend.Admins, d.jwt)

	authHandler := auth.NewHandler(authSvc)
	memberHandler := member.NewHandler(memberSvc)
	paymentHandler := payment.NewHandler(paymentSvc)
	dashboardHandler := dashboard.NewHandler(dashboardSvc)

	authenticator := middleware.Authenticator(d.jwt)

	api := func(r chi.Router) {
		r.Get("/health", d.health.Health)
		authHandler.RegisterRoutes(r, authenticator)
		memberHandler.RegisterRoutes(r, authenticator)
		paymentHandler.RegisterRoutes(r, authenticator)
		dashboardHandler.RegisterRoutes(r, authenticator)
	}

	basePath := strings.TrimRight(d.cfg.Server.BasePath, "/")
	if basePath == "" {
		api(router)
		return
	}

	router.Get("/health", d.health.Health)
	router.Route(basePath, api)
}

func isHealthCheck(r *http.Request) bool {
	switch {
	case r.URL.Path == "/healthz", r.URL.Path == "/livez", r.URL.Path == "/readyz":
		return true
	case strings.HasSuffix(r.URL.Path, "/health"):
		return true
	default:
		return false
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

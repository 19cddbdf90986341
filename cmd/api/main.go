// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/bakery-orders/internal/account"
	"github.com/carterperez-dev/bakery-orders/internal/admin"
	"github.com/carterperez-dev/bakery-orders/internal/auth"
	"github.com/carterperez-dev/bakery-orders/internal/client"
	"github.com/carterperez-dev/bakery-orders/internal/config"
	"github.com/carterperez-dev/bakery-orders/internal/core"
	"github.com/carterperez-dev/bakery-orders/internal/health"
	"github.com/carterperez-dev/bakery-orders/internal/jobs"
	"github.com/carterperez-dev/bakery-orders/internal/middleware"
	"github.com/carterperez-dev/bakery-orders/internal/order"
	"github.com/carterperez-dev/bakery-orders/internal/server"
)

const (
	drainDelay = 5 * time.Second

	loginRequestsPerMinute = 10
	loginBurst             = 5
	privilegedLimitFactor  = 4
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

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	applied, err := db.Migrate(ctx)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", "count", applied)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}()
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	accountRepo := account.NewRepository(db.DB)
	accountSvc := account.NewService(accountRepo)
	accountHandler := account.NewHandler(accountSvc)

	seeded, err := accountSvc.Bootstrap(ctx, cfg.Bootstrap)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if seeded {
		logger.Warn("seeded privileged account from bootstrap credentials; change its password",
			"username", cfg.Bootstrap.Username,
		)
	}

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(
		authRepo,
		jwtManager,
		accountSvc,
		auth.NewRedisBlacklist(redis.Client),
	)
	authHandler := auth.NewHandler(authSvc)

	clientRepo := client.NewRepository(db.DB)
	clientSvc := client.NewService(clientRepo)
	clientHandler := client.NewHandler(clientSvc)

	orderRepo := order.NewRepository(db.DB)
	orderSvc := order.NewService(orderRepo, clientSvc, cfg.Orders)
	orderHandler := order.NewHandler(orderSvc)

	healthHandler := health.NewHandler(
		cfg.App.Version,
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Totals:     accountSvc,
		Sessions:   authSvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	jobManager := jobs.NewJobManager(cfg.Jobs, authSvc, logger)
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)

	loginLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.PerMinute(loginRequestsPerMinute, loginBurst),
		KeyFunc:  middleware.KeyByAccountAndEndpoint,
		FailOpen: false,
	}).Handler

	accountLimiter := middleware.AccountRateLimiter(
		redis.Client,
		middleware.PerMinute(cfg.RateLimit.Requests, cfg.RateLimit.Burst),
		middleware.PerMinute(
			cfg.RateLimit.Requests*privilegedLimitFactor,
			cfg.RateLimit.Burst*privilegedLimitFactor,
		),
	)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, loginLimiter)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(accountLimiter)

			clientHandler.RegisterRoutes(r)
			orderHandler.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePrivileged)

				accountHandler.RegisterRoutes(r)
				adminHandler.RegisterRoutes(r)
			})
		})
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

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

	logger.Info("application stopped")
	return nil
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

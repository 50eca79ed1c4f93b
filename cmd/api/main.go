package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/tripfriend/auth-service/internal/api/http"
	"github.com/tripfriend/auth-service/internal/api/http/handlers"
	"github.com/tripfriend/auth-service/internal/auth"
	"github.com/tripfriend/auth-service/internal/config"
	"github.com/tripfriend/auth-service/internal/events"
	"github.com/tripfriend/auth-service/internal/observability"
	"github.com/tripfriend/auth-service/internal/persistence"
	"github.com/tripfriend/auth-service/internal/repository"
	"github.com/tripfriend/auth-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if pg.PoolHandle() == nil {
		logger.Fatal("POSTGRES_DSN is required to look up member credentials")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, cfg.Auth.SessionStoreTimeout(), logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	sessions := auth.NewRedisSessionStore(redis.Client, cfg.Auth.SessionStoreTimeout())
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Credentials: repository.NewCredentialRepository(pg.PoolHandle()),
		Sessions:    sessions,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.Tokens(), sessions, auth.GatewayOptions{
		Public:  auth.MustPublicRoutes(auth.DefaultPublicRoutes),
		Strict:  cfg.Auth.StrictSession,
		Logger:  logger,
		Metrics: metrics,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.CookieSecure),
		Member:         handlers.NewMemberHandler(authService, cfg.Auth.CookieSecure),
		Admin:          handlers.NewAdminHandler(authService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

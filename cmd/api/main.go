package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/blog-platform/internal/api/http"
	"github.com/spec-kit/blog-platform/internal/api/http/handlers"
	"github.com/spec-kit/blog-platform/internal/auth"
	"github.com/spec-kit/blog-platform/internal/config"
	"github.com/spec-kit/blog-platform/internal/events"
	"github.com/spec-kit/blog-platform/internal/observability"
	"github.com/spec-kit/blog-platform/internal/persistence"
	"github.com/spec-kit/blog-platform/internal/repository"
	"github.com/spec-kit/blog-platform/internal/service"
	"github.com/spec-kit/blog-platform/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	userRepo := repository.NewUserRepository(pg.PoolHandle())

	sessionService := service.NewSessionService(*cfg, service.SessionDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	accountService := service.NewAccountService(*cfg, userRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(sessionService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(sessionService, cfg.App.IsProduction())
	userHandler := handlers.NewUserHandler(accountService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		Users:          userHandler,
		AuthMiddleware: authMiddleware,
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

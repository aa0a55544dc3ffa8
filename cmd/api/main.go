package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/case-service/internal/api/http"
	"github.com/spec-kit/case-service/internal/api/http/handlers"
	"github.com/spec-kit/case-service/internal/auth"
	"github.com/spec-kit/case-service/internal/cache"
	"github.com/spec-kit/case-service/internal/config"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/observability"
	"github.com/spec-kit/case-service/internal/persistence"
	"github.com/spec-kit/case-service/internal/repository"
	"github.com/spec-kit/case-service/internal/repository/memstore"
	"github.com/spec-kit/case-service/internal/service"
	"github.com/spec-kit/case-service/internal/worker"
)

type repositories struct {
	users    repository.UserRepository
	statuses repository.CaseStatusRepository
	cases    repository.CaseRepository
	history  repository.CaseHistoryRepository
}

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

	repos, seed := buildRepositories(pg, cfg.Postgres)
	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	statusCatalog := cache.NewStatusCatalog(repos.statuses, redis.Client, cfg.Cache.StatusTTL(), logger)
	if seed {
		if err := persistence.Seed(ctx, persistence.SeedRepositories{
			Users:    repos.users,
			Statuses: repos.statuses,
			Cases:    repos.cases,
		}, logger); err != nil {
			logger.Fatal("failed to seed reference data", zap.Error(err))
		}
		if err := statusCatalog.Invalidate(ctx); err != nil {
			logger.Warn("failed to invalidate status cache", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	caseService := service.NewCaseService(service.CaseDependencies{
		CaseRepo:    repos.cases,
		HistoryRepo: repos.history,
		Statuses:    statusCatalog,
		Policy:      service.NewTransitionPolicy(cfg.Cases.ForwardOnlyStatus),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		CaseRepo:   repos.cases,
		UserRepo:   repos.users,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	statsService := service.NewStatsService(service.StatsDependencies{
		CaseRepo: repos.cases,
		UserRepo: repos.users,
		Statuses: statusCatalog,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: repos.users})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.Start(worker.Dependencies{
		Dispatcher:    dispatcher,
		History:       repos.history,
		Metrics:       metrics,
		Notifications: notificationService,
		Logger:        logger,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users, cfg.Auth.AllowUserHeader)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Cases:          handlers.NewCasesHandler(caseService, assignmentService, statsService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.Bool("postgres", pg.Enabled()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

// buildRepositories picks Postgres when a pool is open and the in-memory store
// otherwise. The second result reports whether reference data should be seeded.
func buildRepositories(pg *persistence.Postgres, cfg config.PostgresConfig) (repositories, bool) {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return repositories{
			users:    repository.NewUserRepository(pool),
			statuses: repository.NewCaseStatusRepository(pool),
			cases:    repository.NewCaseRepository(pool),
			history:  repository.NewCaseHistoryRepository(pool),
		}, cfg.RunSeed
	}

	store := memstore.New()
	return repositories{
		users:    store.Users(),
		statuses: store.Statuses(),
		cases:    store.Cases(),
		history:  store.History(),
	}, true
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

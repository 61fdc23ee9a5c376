package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/adoption-portal/internal/api/http"
	"github.com/spec-kit/adoption-portal/internal/api/http/handlers"
	"github.com/spec-kit/adoption-portal/internal/auth"
	"github.com/spec-kit/adoption-portal/internal/config"
	"github.com/spec-kit/adoption-portal/internal/events"
	"github.com/spec-kit/adoption-portal/internal/observability"
	"github.com/spec-kit/adoption-portal/internal/persistence"
	"github.com/spec-kit/adoption-portal/internal/repository"
	"github.com/spec-kit/adoption-portal/internal/service"
	"github.com/spec-kit/adoption-portal/internal/worker"
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

	pool := pg.PoolHandle()
	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo        repository.UserRepository
		petRepo         repository.PetRepository
		applicationRepo repository.ApplicationRepository
		questionRepo    repository.QuestionRepository
	)
	if pool != nil {
		userRepo = repository.NewUserRepository(pool)
		petRepo = repository.NewPetRepository(pool)
		applicationRepo = repository.NewApplicationRepository(pool)
		questionRepo = repository.NewQuestionRepository(pool)
	} else {
		userRepo = repository.NewMemoryUserRepository()
		petRepo = repository.NewMemoryPetRepository()
		applicationRepo = repository.NewMemoryApplicationRepository()
		questionRepo = repository.NewMemoryQuestionRepository()
	}

	if cfg.App.SeedDemo {
		seedDeps := service.SeedDependencies{UserRepo: userRepo, PetRepo: petRepo, QuestionRepo: questionRepo}
		if err := service.SeedDemoData(ctx, cfg.Auth.BcryptCost, seedDeps, logger); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	workflowService := service.NewWorkflowService(cfg.Workflow, service.WorkflowDependencies{
		ApplicationRepo: applicationRepo,
		PetRepo:         petRepo,
		UserRepo:        userRepo,
		QuestionRepo:    questionRepo,
		Locks:           redis,
		Dispatcher:      dispatcher,
	})
	catalogService := service.NewCatalogService(questionRepo)
	petService := service.NewPetService(petRepo, applicationRepo, dispatcher)
	notificationService := service.NewNotificationService(logger)
	worker.StartNotificationWorker(notificationService, dispatcher)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Pets:           handlers.NewPetsHandler(petService),
		Questionnaire:  handlers.NewQuestionnaireHandler(catalogService),
		Applications:   handlers.NewApplicationsHandler(workflowService),
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

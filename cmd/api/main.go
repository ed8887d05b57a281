package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/org-service/internal/api/http"
	"github.com/spec-kit/org-service/internal/api/http/handlers"
	"github.com/spec-kit/org-service/internal/auth"
	"github.com/spec-kit/org-service/internal/billing"
	"github.com/spec-kit/org-service/internal/config"
	"github.com/spec-kit/org-service/internal/events"
	"github.com/spec-kit/org-service/internal/observability"
	"github.com/spec-kit/org-service/internal/persistence"
	"github.com/spec-kit/org-service/internal/provisioning"
	"github.com/spec-kit/org-service/internal/repository"
	"github.com/spec-kit/org-service/internal/service"
	"github.com/spec-kit/org-service/internal/worker"
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

	pool := pg.PoolHandle()
	var (
		staffRepo repository.StaffRepository
		postRepo  repository.PostRepository
		deptRepo  repository.DepartmentRepository
	)
	if pool != nil {
		staffRepo = repository.NewStaffRepository(pool)
		postRepo = repository.NewPostRepository(pool)
		deptRepo = repository.NewDepartmentRepository(pool)
	} else {
		logger.Warn("running with in-memory repositories; data will not survive restarts")
		staffRepo = repository.NewMemoryStaffRepository()
		postRepo = repository.NewMemoryPostRepository()
		deptRepo = repository.NewMemoryDepartmentRepository()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	rosterCache := service.NewRosterCache(redis.Client, cfg.Membership.RosterCacheTTL, logger)

	provisioner := provisioning.NewHTTPClient(cfg.Provisioning, logger)

	membershipService := service.NewMembershipService(cfg, service.MembershipDependencies{
		StaffRepo:   staffRepo,
		PostRepo:    postRepo,
		Provisioner: provisioner,
		Dispatcher:  dispatcher,
		RosterCache: rosterCache,
		Logger:      logger,
	})
	orgService := service.NewStaffService(service.OrgDependencies{
		DepartmentRepo: deptRepo,
		PostRepo:       postRepo,
		StaffRepo:      staffRepo,
		RosterCache:    rosterCache,
	})
	authService := service.NewAuthService(cfg.Auth)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification.WebhookURL)
	worker.StartNotificationWorker(notificationService)

	if cfg.Billing.Enabled && pool != nil {
		reconciler := billing.NewReconciler(
			repository.NewBillingOrderRepository(pool),
			billing.NewHTTPGateway(cfg.Billing.GatewayURL),
			logger,
		)
		interval := fmt.Sprintf("@every %ds", int(cfg.Billing.SyncInterval().Seconds()))
		billingWorker, err := worker.NewBillingWorker(cfg.Redis, interval, reconciler, logger)
		if err != nil {
			logger.Fatal("failed to start billing worker", zap.Error(err))
		}
		go billingWorker.Run(ctx)
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Staff:          handlers.NewStaffHandler(orgService),
		Membership:     handlers.NewMembershipHandler(membershipService, metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

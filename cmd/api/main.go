package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/aquanqa/ticketera/internal/api/http"
	"github.com/aquanqa/ticketera/internal/api/http/handlers"
	"github.com/aquanqa/ticketera/internal/auth"
	"github.com/aquanqa/ticketera/internal/config"
	"github.com/aquanqa/ticketera/internal/events"
	"github.com/aquanqa/ticketera/internal/observability"
	"github.com/aquanqa/ticketera/internal/persistence"
	"github.com/aquanqa/ticketera/internal/repository"
	"github.com/aquanqa/ticketera/internal/service"
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

	var (
		ticketRepo      repository.TicketRepository
		attachmentStore repository.AttachmentStore
		pg              *persistence.Postgres
	)

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		if pg.PoolHandle() == nil {
			logger.Fatal("postgres backend selected but POSTGRES_DSN is empty")
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		ticketRepo = repository.NewTicketRepository(pg.PoolHandle())
		attachmentStore = repository.NewAttachmentStore(pg.PoolHandle())
	case config.BackendJSONFile:
		store, err := repository.NewJSONFileStore(cfg.Storage.DataDir)
		if err != nil {
			logger.Fatal("failed to open jsonfile store", zap.Error(err))
		}
		ticketRepo = store.Tickets()
		attachmentStore = store.Attachments()
		logger.Info("using jsonfile storage backend", zap.String("data_dir", cfg.Storage.DataDir))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	ticketRepo = repository.NewSnapshotCache(ticketRepo, redis.Client, cfg.Redis.CacheTTL, logger)

	policy := auth.NewPolicy(cfg.Auth.AdminUsers)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, policy)

	dispatcher := events.NewInMemoryDispatcher()
	registerAuditLog(dispatcher, logger)

	ticketService := service.NewTicketService(service.Dependencies{
		TicketRepo:     ticketRepo,
		AttachmentRepo: attachmentStore,
		Policy:         policy,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 20 * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Session:        handlers.NewSessionHandler(tokenManager, policy),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Admin:          handlers.NewAdminHandler(ticketService, metrics),
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

func registerAuditLog(dispatcher events.Dispatcher, logger *zap.Logger) {
	handler := func(_ context.Context, event events.Event) error {
		logger.Info("ticket event",
			zap.String("type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.String("identity", event.Identity),
			zap.Any("payload", event.Payload),
		)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStateChanged,
		events.EventTicketCommentAdded,
		events.EventTicketDeleted,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

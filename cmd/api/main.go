package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/token-auth-service/internal/api/http"
	"github.com/spec-kit/token-auth-service/internal/api/http/handlers"
	"github.com/spec-kit/token-auth-service/internal/auth"
	"github.com/spec-kit/token-auth-service/internal/config"
	"github.com/spec-kit/token-auth-service/internal/events"
	"github.com/spec-kit/token-auth-service/internal/idgen"
	"github.com/spec-kit/token-auth-service/internal/observability"
	"github.com/spec-kit/token-auth-service/internal/persistence"
	"github.com/spec-kit/token-auth-service/internal/repository"
	"github.com/spec-kit/token-auth-service/internal/service"
	"github.com/spec-kit/token-auth-service/internal/worker"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		accounts    repository.AccountRepository
		credentials repository.CredentialRepository
	)
	if pg.Enabled() {
		accounts = repository.NewAccountRepository(pg.PoolHandle())
		credentials = repository.NewCredentialRepository(pg.PoolHandle())
	} else {
		store := repository.NewMemoryAccountStore()
		accounts, credentials = store, store
	}
	tokens := repository.NewTokenRepository(redis.Client, cfg.Redis.KeyPrefix, cfg.Auth.TokenRetention)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	hasher := auth.NewHasher(nil)
	tokenService := service.NewTokenService(cfg.Auth, service.TokenDependencies{
		Credentials: credentials,
		Tokens:      tokens,
		Hasher:      hasher,
		Events:      dispatcher,
		Logger:      logger,
	})
	registrationService := service.NewRegistrationService(cfg.Auth, service.RegistrationDependencies{
		Accounts: accounts,
		IDs:      idgen.New(),
		Hasher:   hasher,
		Tokens:   tokenService,
		Events:   dispatcher,
		Logger:   logger,
	})

	authenticator := auth.NewAuthenticator(tokens, nil, logger)
	authMiddleware := auth.NewMiddleware(authenticator, httptransport.PublicPaths...)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tokens:          handlers.NewTokenHandler(tokenService),
		Registration:    handlers.NewRegistrationHandler(registrationService),
		Subject:         handlers.NewSubjectHandler(),
		AuthMiddleware:  authMiddleware,
		Metrics:         metrics,
		TokenRateLimit:  cfg.Auth.TokenRateLimit,
		TokenRateWindow: cfg.Auth.TokenRateWindow,
	})

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.Shutdown()
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", zap.Error(err))
	}
}

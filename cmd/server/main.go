package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hustle/internal/app"
	"hustle/internal/auth"
	"hustle/internal/catalog"
	"hustle/internal/config"
	"hustle/internal/handler"
	"hustle/internal/logger"
	"hustle/internal/pricing"
	internalRedis "hustle/internal/redis"
	"hustle/internal/repository"
	"hustle/internal/repository/memory"
	"hustle/internal/repository/postgres"
	"hustle/internal/service"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			zl.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			zl.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	var db *sql.DB
	if cfg.Storage.Driver == config.StoragePostgres {
		db, err = app.NewDatabase(ctx, cfg.Database, nrApp, zl)
		if err != nil {
			zl.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp, zl)
		if err != nil {
			zl.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// Wire dependencies.
	server, err := wireServer(db, redisClient, nrApp, cfg, zl)
	if err != nil {
		zl.Fatal("failed to wire server", zap.Error(err))
	}

	// Start server in goroutine.
	go func() {
		zl.Info("starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("storage", cfg.Storage.Driver),
			zap.Bool("redis", redisClient != nil),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	zl.Info("server exited")
}

type repositories struct {
	users         repository.UserRepository
	wallets       repository.WalletRepository
	runners       repository.RunnerRepository
	instantTasks  repository.InstantTaskRepository
	customTasks   repository.CustomTaskRepository
	notifications repository.NotificationRepository
}

// newRepositories picks the backend. Notifications are always kept in memory.
func newRepositories(db *sql.DB) repositories {
	if db == nil {
		return repositories{
			users:         memory.NewUserRepository(),
			wallets:       memory.NewWalletRepository(),
			runners:       memory.NewRunnerRepository(),
			instantTasks:  memory.NewInstantTaskRepository(),
			customTasks:   memory.NewCustomTaskRepository(),
			notifications: memory.NewNotificationRepository(),
		}
	}
	return repositories{
		users:         postgres.NewUserRepository(db),
		wallets:       postgres.NewWalletRepository(db),
		runners:       postgres.NewRunnerRepository(db),
		instantTasks:  postgres.NewInstantTaskRepository(db),
		customTasks:   postgres.NewCustomTaskRepository(db),
		notifications: memory.NewNotificationRepository(),
	}
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, zl *zap.Logger) (*http.Server, error) {
	// Initialize Redis stores. Each stays a nil interface without Redis.
	var (
		locationStore internalRedis.LocationStoreInterface
		lockStore     internalRedis.LockStoreInterface
		sessionStore  internalRedis.SessionStoreInterface
		otpStore      internalRedis.OTPStoreInterface
	)
	if redisClient != nil {
		locationStore = internalRedis.NewLocationStore(redisClient)
		lockStore = internalRedis.NewLockStore(redisClient)
		sessionStore = internalRedis.NewSessionStore(redisClient)
		otpStore = internalRedis.NewOTPStore(redisClient)
	}

	repos := newRepositories(db)

	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	estimator := pricing.NewEstimator(cfg.Pricing.FareConfig(), cfg.Pricing.Coupons)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize services.
	notificationService := service.NewNotificationService(repos.notifications, zl)
	walletService := service.NewWalletService(repos.wallets, cfg.Wallet.StartingBalance, zl)
	runnerService := service.NewRunnerService(repos.runners, locationStore, zl)
	authService := service.NewAuthService(repos.users, walletService, tokens, sessionStore, otpStore, cfg.Auth.SessionTTL, zl)
	instantTaskService := service.NewInstantTaskService(repos.instantTasks, cat, estimator, walletService, runnerService, notificationService, zl)
	customTaskService := service.NewCustomTaskService(repos.customTasks, walletService, runnerService, notificationService, lockStore, cfg.Matching.AcceptLockTTL, zl)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		AuthHandler:         handler.NewAuthHandler(authService),
		FareHandler:         handler.NewFareHandler(estimator),
		WalletHandler:       handler.NewWalletHandler(walletService),
		CatalogHandler:      handler.NewCatalogHandler(cat),
		RunnerHandler:       handler.NewRunnerHandler(runnerService, cfg.Matching.SearchRadiusKm),
		InstantTaskHandler:  handler.NewInstantTaskHandler(instantTaskService, runnerService),
		CustomTaskHandler:   handler.NewCustomTaskHandler(customTaskService, runnerService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		Sessions:            authService,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
		Logger:              zl,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}

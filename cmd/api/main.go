package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/proneo/platform/internal/app"
	"github.com/proneo/platform/internal/auth"
	"github.com/proneo/platform/internal/dismissal"
	"github.com/proneo/platform/internal/guard"
	"github.com/proneo/platform/internal/handler"
	"github.com/proneo/platform/internal/infra"
	"github.com/proneo/platform/internal/localstate"
	"github.com/proneo/platform/internal/notify"
	"github.com/proneo/platform/internal/provider"
	"github.com/proneo/platform/internal/repository"
	"github.com/proneo/platform/internal/roster"
	"github.com/proneo/platform/internal/service"
	"github.com/proneo/platform/internal/settings"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Postgres holds the outbox and, by default, per-device state.
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	health := map[string]handler.HealthCheck{
		"postgres": func(ctx context.Context) error { return infra.PingWithTimeout(ctx, pool.Ping) },
	}

	// Firebase: roster, users, picklists and push.
	fbApp, err := infra.NewFirebaseApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init firebase: %w", err)
	}
	fs, err := fbApp.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("init firestore: %w", err)
	}
	defer fs.Close()

	directory := provider.NewFirestoreDirectory(fs)
	lists := provider.NewFirestoreLists(fs)
	watcher := roster.NewWatcher(provider.NewFirestoreRoster(fs, cfg.RosterLimit, logger), logger)
	watcher.Start(ctx)

	var verifier auth.TokenVerifier
	switch cfg.AuthMode {
	case "jwt":
		verifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
		logger.Warn("using locally signed session tokens")
	default:
		authClient, err := fbApp.Auth(ctx)
		if err != nil {
			return fmt.Errorf("init firebase auth: %w", err)
		}
		verifier = provider.NewFirebaseVerifier(authClient, directory)
	}

	scheduler := infra.NewScheduler(loc, logger)

	// Per-device dismissals and toggles
	var state localstate.Store
	switch cfg.StateBackend {
	case "redis":
		rdb, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		store := localstate.NewRedisStore(rdb)
		health["redis"] = func(ctx context.Context) error { return infra.PingWithTimeout(ctx, store.Ping) }
		state = store
	case "memory":
		logger.Warn("device state is in memory and will not survive a restart")
		state = localstate.NewInMemoryStore()
	default:
		store := repository.NewDeviceStateStore(pool, repository.NewDeviceStateRepository())
		err := scheduler.Add(ctx, "state-purge", cfg.StatePurgeSchedule, func(ctx context.Context) error {
			n, err := store.Purge(ctx)
			if err == nil && n > 0 {
				logger.Info("purged expired device state", "rows", n)
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("schedule state purge: %w", err)
		}
		state = store
	}
	logger.Info("device state backend ready", "backend", cfg.StateBackend)

	// Outbox -> Kafka
	outboxRepo := repository.NewOutboxRepository()
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	poller := infra.NewOutboxPoller(pool, outboxRepo, producer, cfg.OutboxPollInterval, logger)
	poller.Start(ctx)

	// Services
	alertSvc := service.NewAlertService(watcher, dismissal.NewRegistry(state), settings.NewRegistry(state), loc, logger)
	userSvc := service.NewUserService(
		directory,
		pool,
		outboxRepo,
		guard.NewIdempotencyGuard(time.Minute),
		guard.NewRateLimiter(30, time.Minute),
		logger,
	)
	listSvc := service.NewListService(lists, logger)

	// Daily digest
	if cfg.DigestEnabled {
		msgClient, err := fbApp.Messaging(ctx)
		if err != nil {
			return fmt.Errorf("init firebase messaging: %w", err)
		}
		sender := provider.NewFCMSender(msgClient, guard.NewCircuitBreaker(3, 5*time.Minute), logger)
		digest := notify.NewDigest(watcher, directory, sender, loc, logger)
		if err := scheduler.Add(ctx, "digest", cfg.DigestSchedule, func(ctx context.Context) error {
			return digest.Run(ctx, time.Now())
		}); err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
		logger.Info("digest scheduled", "spec", cfg.DigestSchedule, "timezone", cfg.Timezone)
	}
	scheduler.Start(ctx)

	r := app.NewRouter(app.RouterDeps{
		Verifier:    verifier,
		Alerts:      alertSvc,
		Users:       userSvc,
		Lists:       listSvc,
		Health:      health,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Logger:      logger,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		stop()
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	// Let in-flight directory writes finish before the clients close.
	userSvc.Wait()
	poller.Wait()
	watcher.Wait()

	logger.Info("server stopped gracefully")
	return nil
}

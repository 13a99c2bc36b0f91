package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"
	"shareit/internal/service"
	"shareit/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := initRateLimiter(ctx, cfg, logger)
	publisher := initPublisher(cfg, logger)
	defer publisher.Close()

	bookings := service.NewBookingService(db, db, db, db, logger)
	items := service.NewItemService(db, db, db, db, logger)
	users := service.NewUserService(db, logger)
	requests := service.NewRequestService(db, db, logger)

	server := api.NewServer(cfg, bookings, items, users, requests, limiter, logger)

	startOutbox(ctx, cfg, db, publisher, logger)
	startBackup(ctx, cfg, logger)
	startMetrics(ctx, cfg, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logger, closer, nil
}

// initRateLimiter builds the limiter chain: Redis-backed when available,
// in-process token buckets otherwise, with automatic failover between the
// two when both are configured.
func initRateLimiter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) repository.RateLimiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}

	memory := repository.NewMemoryRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	if !cfg.Redis.Enabled {
		logger.Info().Msg("rate limiting with in-process buckets")
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable, rate limiting with in-process buckets")
		return memory
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("rate limiting with redis")
	window := time.Duration(cfg.RateLimit.Window) * time.Second
	primary := repository.NewRedisRateLimiter(client, cfg.RateLimit.Requests, window)
	return repository.NewFailoverRateLimiter(primary, memory, logger)
}

func initPublisher(cfg *config.Config, logger *zerolog.Logger) events.Publisher {
	if !cfg.Events.Enabled {
		return events.NopPublisher{}
	}

	publisher, err := events.NewRabbitPublisher(cfg.Events.URL, cfg.Events.Exchange)
	if err != nil {
		logger.Warn().Err(err).Msg("rabbitmq unreachable, booking events stay queued in the outbox")
		return events.NopPublisher{}
	}

	logger.Info().Str("exchange", cfg.Events.Exchange).Msg("rabbitmq connected")
	return publisher
}

func startOutbox(ctx context.Context, cfg *config.Config, db *database.DB, publisher events.Publisher, logger *zerolog.Logger) {
	if !cfg.Events.Enabled {
		return
	}

	pollInterval, err := time.ParseDuration(cfg.Events.PollInterval)
	if err != nil {
		logger.Warn().Err(err).Str("poll_interval", cfg.Events.PollInterval).Msg("invalid poll interval, using 5s")
		pollInterval = 5 * time.Second
	}

	outbox := worker.NewOutboxWorker(
		db,
		publisher,
		worker.RetryPolicy{MaxRetries: cfg.Events.MaxRetries},
		pollInterval,
		cfg.Events.BatchSize,
		logger,
	)
	go outbox.Run(ctx)
}

func startBackup(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Backup.Enabled {
		return
	}
	backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
	go backup.Start(ctx)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort), Handler: mux}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}

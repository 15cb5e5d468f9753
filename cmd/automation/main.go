package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trackademy/batchline/internal/config"
	"github.com/trackademy/batchline/internal/infra/postgresql"
	"github.com/trackademy/batchline/internal/infra/postgresql/migrations"
	"github.com/trackademy/batchline/internal/observability"
	"github.com/trackademy/batchline/internal/queue"
	"github.com/trackademy/batchline/internal/repository"
	"github.com/trackademy/batchline/internal/service"
	"go.uber.org/zap"
)

const runTimeout = 10 * time.Minute

// One-shot lifecycle run for cron-driven deployments. The api binary runs
// the same automation on its internal scheduler; deployments pick one.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	// The broker is optional here: a cron run without RabbitMQ still
	// completes batches, it just skips the event stream.
	var publisher queue.Publisher
	if rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL); err != nil {
		logger.Warn("rabbitmq unavailable, events will be skipped", zap.Error(err))
	} else {
		defer rabbit.Close()
		publisher = queue.NewRabbitMQPublisher(rabbit)
	}

	metrics := observability.NewMetrics()

	lifecycle, err := service.NewLifecycleService(
		repository.NewGormBatchRepo(db),
		repository.NewGormNotificationRepo(db),
		publisher,
		metrics,
		cfg.EndingSoonWindowDays,
		logger,
	)
	if err != nil {
		logger.Fatal("lifecycle service init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	result, err := lifecycle.RunOnce(ctx)
	if err != nil {
		logger.Error("lifecycle run failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("lifecycle run complete",
		zap.Int("batchesCompleted", result.BatchesCompleted),
		zap.Int64("studentsCompleted", result.StudentsCompleted),
		zap.Int("endingSoonNotified", result.EndingSoonNotified),
	)
}

package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/trackademy/batchline/internal/config"
	"github.com/trackademy/batchline/internal/handler"
	"github.com/trackademy/batchline/internal/infra/postgresql"
	"github.com/trackademy/batchline/internal/infra/postgresql/migrations"
	infraredis "github.com/trackademy/batchline/internal/infra/redis"
	"github.com/trackademy/batchline/internal/observability"
	"github.com/trackademy/batchline/internal/queue"
	"github.com/trackademy/batchline/internal/repository"
	"github.com/trackademy/batchline/internal/service"
	"github.com/trackademy/batchline/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

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

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer rabbit.Close()
	publisher := queue.NewRabbitMQPublisher(rabbit)

	metrics := observability.NewMetrics()

	batchRepo := repository.NewGormBatchRepo(db)
	studentRepo := repository.NewGormStudentRepo(db)
	courseRepo := repository.NewGormCourseRepo(db)
	enquiryRepo := repository.NewGormEnquiryRepo(db)
	notificationRepo := repository.NewGormNotificationRepo(db)
	attendanceRepo := repository.NewGormAttendanceRepo(db)

	batchService, err := service.NewBatchService(batchRepo, studentRepo, courseRepo, publisher, metrics, logger)
	if err != nil {
		logger.Fatal("batch service init failed", zap.Error(err))
	}
	studentService, err := service.NewStudentService(studentRepo, batchRepo, logger)
	if err != nil {
		logger.Fatal("student service init failed", zap.Error(err))
	}
	courseService, err := service.NewCourseService(courseRepo, logger)
	if err != nil {
		logger.Fatal("course service init failed", zap.Error(err))
	}
	enquiryService, err := service.NewEnquiryService(enquiryRepo, notificationRepo, publisher, metrics, logger)
	if err != nil {
		logger.Fatal("enquiry service init failed", zap.Error(err))
	}
	notificationService, err := service.NewNotificationService(notificationRepo, logger)
	if err != nil {
		logger.Fatal("notification service init failed", zap.Error(err))
	}

	cache, err := infraredis.NewCache(rdb)
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}
	attendanceService, err := service.NewAttendanceService(
		attendanceRepo, batchRepo, studentRepo, enquiryRepo, notificationRepo,
		cache, cfg.DashboardCacheTTL(), logger,
	)
	if err != nil {
		logger.Fatal("attendance service init failed", zap.Error(err))
	}

	lifecycleService, err := service.NewLifecycleService(
		batchRepo, notificationRepo, publisher, metrics, cfg.EndingSoonWindowDays, logger,
	)
	if err != nil {
		logger.Fatal("lifecycle service init failed", zap.Error(err))
	}
	scheduler, err := service.NewLifecycleScheduler(lifecycleService, cfg.LifecycleInterval(), logger)
	if err != nil {
		logger.Fatal("scheduler init failed", zap.Error(err))
	}

	webhookLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.WebhookRatePerMin)
	if err != nil {
		logger.Fatal("rate limiter init failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "batchline",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, map[string]handler.ReadinessCheck{
		"postgres": handler.PostgresCheck(sqlDB),
		"redis":    handler.RedisCheck(rdb),
		"rabbitmq": func(ctx context.Context) error {
			if !rabbit.Healthy() {
				return fmt.Errorf("broker connection closed")
			}
			return nil
		},
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if err := handler.RegisterBatchRoutes(app, batchService); err != nil {
		logger.Fatal("batch routes init failed", zap.Error(err))
	}
	if err := handler.RegisterStudentRoutes(app, studentService); err != nil {
		logger.Fatal("student routes init failed", zap.Error(err))
	}
	if err := handler.RegisterCourseRoutes(app, courseService); err != nil {
		logger.Fatal("course routes init failed", zap.Error(err))
	}
	if err := handler.RegisterEnquiryRoutes(app, enquiryService, webhookLimiter); err != nil {
		logger.Fatal("enquiry routes init failed", zap.Error(err))
	}
	if err := handler.RegisterNotificationRoutes(app, notificationService); err != nil {
		logger.Fatal("notification routes init failed", zap.Error(err))
	}
	if err := handler.RegisterAttendanceRoutes(app, attendanceService); err != nil {
		logger.Fatal("attendance routes init failed", zap.Error(err))
	}
	if err := handler.RegisterAutomationRoutes(app, lifecycleService); err != nil {
		logger.Fatal("automation routes init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("batchline api started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})
	group.Go(func() error {
		return scheduler.Start(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		return app.Shutdown()
	})

	if err := group.Wait(); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
	logger.Info("server stopped")
}

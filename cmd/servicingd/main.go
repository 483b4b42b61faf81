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

	goredis "github.com/redis/go-redis/v9"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/usecase"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/service"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/infrastructure/config"
	svcKafka "github.com/ingatatech/loan-management-system-backend-sub003/internal/infrastructure/kafka"
	pgRepo "github.com/ingatatech/loan-management-system-backend-sub003/internal/infrastructure/persistence/postgres"
	svcRedis "github.com/ingatatech/loan-management-system-backend-sub003/internal/infrastructure/redis"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/infrastructure/scheduler"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/presentation/rest"
	pkgkafka "github.com/ingatatech/loan-management-system-backend-sub003/pkg/kafka"
	"github.com/ingatatech/loan-management-system-backend-sub003/pkg/observability"
	pkgpostgres "github.com/ingatatech/loan-management-system-backend-sub003/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	cfg.Validate()

	logger := observability.InitLogger(observability.LogConfig{
		Level:  "info",
		Format: "json",
	})
	slog.SetDefault(logger)

	logger.Info("starting loan-servicing-engine",
		"http_port", cfg.HTTPPort,
		"sweep_interval", cfg.SweepInterval.String(),
	)

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Run database migrations.
	migDSN := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}.DSN()
	if migErr := pkgpostgres.RunMigrations(migDSN, "file://internal/infrastructure/persistence/postgres/migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Redis, used for the payment attempt lock.
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable at startup, payment locking degraded", "error", err)
	}

	// Provisioning policy from configuration.
	policy, err := service.NewProvisionPolicy(cfg.ProvisionRates)
	if err != nil {
		logger.Error("invalid provision rates", "error", err)
		os.Exit(1)
	}

	// Wire infrastructure adapters.
	loanRepo := pgRepo.NewLoanRepo(pool)
	installmentRepo := pgRepo.NewInstallmentRepo(pool)
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers: cfg.Kafka.Brokers,
	})
	defer kafkaProducer.Close()
	publisher := svcKafka.NewEventPublisher(kafkaProducer, cfg.Kafka.Topic, logger)
	attemptLock := svcRedis.NewAttemptLock(redisClient)

	// Wire use cases.
	generateUC := usecase.NewGenerateScheduleUseCase(loanRepo, installmentRepo, publisher)
	paymentUC := usecase.NewApplyPaymentUseCase(loanRepo, installmentRepo, publisher, attemptLock,
		cfg.PaymentCooldown, observability.Component(logger, "payments"))
	recalcUC := usecase.NewRecalculateScheduleUseCase(loanRepo, installmentRepo, publisher)
	classifyUC := usecase.NewClassifyLoanUseCase(loanRepo, installmentRepo, policy)
	sweepUC := usecase.NewRunArrearsSweepUseCase(loanRepo, installmentRepo, publisher,
		service.ArrearsPolicy{PenaltyAnnualRate: cfg.PenaltyAnnualRate},
		observability.Component(logger, "arrears"))
	refreshUC := usecase.NewRefreshClassificationsUseCase(loanRepo, installmentRepo, publisher, policy,
		observability.Component(logger, "classification"))

	// Background servicing jobs.
	sched := scheduler.New(sweepUC, refreshUC, cfg.SweepInterval,
		observability.Component(logger, "scheduler"))
	go sched.Run(ctx)

	// HTTP server: health probes, metrics, and the servicing API.
	_, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	rest.NewHealthHandler(pool, redisClient, logger).RegisterRoutes(mux)
	rest.NewServicingHandler(generateUC, paymentUC, recalcUC, classifyUC,
		observability.Component(logger, "http")).RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("loan-servicing-engine stopped")
}

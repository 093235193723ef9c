package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/logistiga/logistiga/internal/app"
	"github.com/logistiga/logistiga/internal/clients"
	"github.com/logistiga/logistiga/internal/config"
	"github.com/logistiga/logistiga/internal/credit"
	"github.com/logistiga/logistiga/internal/documents"
	"github.com/logistiga/logistiga/internal/ledger"
	"github.com/logistiga/logistiga/internal/numbering"
	"github.com/logistiga/logistiga/internal/observability"
	"github.com/logistiga/logistiga/internal/platform/db"
	"github.com/logistiga/logistiga/internal/taxes"
	"github.com/logistiga/logistiga/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	jobsHandler := jobs.NewHandler(inspector, logger)

	configRepo := config.NewRepository(pool)
	configService := config.NewService(configRepo)
	configHandler := config.NewHandler(logger, configService, configRepo)

	allocator := numbering.NewAllocator(configRepo, numbering.NewRepository(), logger)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerHandler := ledger.NewHandler(logger, ledgerRepo)

	taxesRepo := taxes.NewRepository(pool)
	taxesService := taxes.NewService(taxesRepo, logger)
	taxesHandler := taxes.NewHandler(logger, taxesService)

	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo, allocator, configService, taxesService, ledgerRepo, logger)
	documentsHandler := documents.NewHandler(logger, documentsService)

	creditRepo := credit.NewRepository(pool)
	creditService := credit.NewService(creditRepo, ledgerRepo, logger)
	creditHandler := credit.NewHandler(logger, creditService)

	clientsRepo := clients.NewRepository(pool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Metrics:          metrics,
		ClientsHandler:   clientsHandler,
		ConfigHandler:    configHandler,
		DocumentsHandler: documentsHandler,
		CreditHandler:    creditHandler,
		TaxesHandler:     taxesHandler,
		LedgerHandler:    ledgerHandler,
		JobsHandler:      jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/logistiga/logistiga/internal/app"
	"github.com/logistiga/logistiga/internal/credit"
	jobmetrics "github.com/logistiga/logistiga/internal/jobs"
	"github.com/logistiga/logistiga/internal/ledger"
	"github.com/logistiga/logistiga/internal/platform/db"
	"github.com/logistiga/logistiga/internal/taxes"
	"github.com/logistiga/logistiga/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)

	taxesRepo := taxes.NewRepository(pool)
	taxesService := taxes.NewService(taxesRepo, logger)
	recomputeJob := jobs.NewTaxesRecomputeJob(taxesService, logger, metrics)

	ledgerRepo := ledger.NewRepository(pool)
	creditRepo := credit.NewRepository(pool)
	creditService := credit.NewService(creditRepo, ledgerRepo, logger)
	overdueJob := jobs.NewCreditOverdueScanJob(creditService, logger, metrics)

	recomputeTask, err := jobs.NewTaxesRecomputeTask(jobs.TaxesRecomputePayload{})
	if err != nil {
		logger.Error("build recompute task", slog.Any("error", err))
		os.Exit(1)
	}
	overdueTask, err := jobs.NewCreditOverdueScanTask()
	if err != nil {
		logger.Error("build overdue task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTaxesRecompute, Handler: recomputeJob.Handle},
			{Type: jobs.TaskCreditOverdueScan, Handler: overdueJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.TaxRecomputeCron, Task: recomputeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.OverdueScanCron, Task: overdueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

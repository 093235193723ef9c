package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/logistiga/logistiga/internal/credit"
	jobmetrics "github.com/logistiga/logistiga/internal/jobs"
)

// CreditOverdueScanJob flags unpaid installments whose due date has passed.
type CreditOverdueScanJob struct {
	Service *credit.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCreditOverdueScanJob initialises the overdue scan handler.
func NewCreditOverdueScanJob(service *credit.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *CreditOverdueScanJob {
	return &CreditOverdueScanJob{Service: service, Logger: logger, Metrics: metrics}
}

// Handle executes the overdue scan.
func (j *CreditOverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("credit overdue scan: handler not configured")
	}

	tracker := j.Metrics.Track(TaskCreditOverdueScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	flagged, err := j.Service.MarkOverdue(ctx)
	if err != nil {
		resultErr = err
		j.Logger.Error("overdue scan failed", slog.Any("error", err))
		return resultErr
	}

	j.Metrics.AddOverdue(flagged)
	j.Logger.Info("overdue scan complete", slog.Int64("flagged", flagged))
	return nil
}

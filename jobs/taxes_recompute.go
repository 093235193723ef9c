package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/logistiga/logistiga/internal/jobs"
	"github.com/logistiga/logistiga/internal/taxes"
)

// TaxesRecomputeJob rebuilds monthly tax aggregates from the invoices of
// the period.
type TaxesRecomputeJob struct {
	Service *taxes.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewTaxesRecomputeJob initialises the recompute handler.
func NewTaxesRecomputeJob(service *taxes.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *TaxesRecomputeJob {
	return &TaxesRecomputeJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the tax rebuild.
func (j *TaxesRecomputeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("taxes recompute: handler not configured")
	}
	var payload TaxesRecomputePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Annee == 0 || payload.Mois == 0 {
		payload.Annee, payload.Mois = PreviousMonth(j.clock())
	}

	tracker := j.Metrics.Track(TaskTaxesRecompute)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger.With(slog.Int("annee", payload.Annee), slog.Int("mois", payload.Mois))
	logger.Info("rebuilding monthly tax aggregates")

	if err := j.Service.RecomputeMonth(ctx, payload.Annee, payload.Mois); err != nil {
		resultErr = err
		logger.Error("tax rebuild failed", slog.Any("error", err))
		return resultErr
	}

	logger.Info("tax rebuild complete")
	return nil
}

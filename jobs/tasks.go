package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTaxesRecompute rebuilds a month's tax aggregates from invoices.
	TaskTaxesRecompute = "taxes:recompute"
	// TaskCreditOverdueScan flags past-due credit installments.
	TaskCreditOverdueScan = "credit:overdue_scan"
)

// TaxesRecomputePayload selects the period to rebuild. A zero period means
// the previous calendar month at execution time.
type TaxesRecomputePayload struct {
	Annee int `json:"annee"`
	Mois  int `json:"mois"`
}

// NewTaxesRecomputeTask constructs an Asynq task for a tax rebuild.
func NewTaxesRecomputeTask(payload TaxesRecomputePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTaxesRecompute, data), nil
}

// CreditOverdueScanPayload is empty today; the scan always covers every
// active credit.
type CreditOverdueScanPayload struct{}

// NewCreditOverdueScanTask constructs an Asynq task for the overdue scan.
func NewCreditOverdueScanTask() (*asynq.Task, error) {
	data, err := json.Marshal(CreditOverdueScanPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCreditOverdueScan, data), nil
}

// PreviousMonth resolves the period immediately before now. Stepping back
// from the first of the month avoids AddDate's day normalization, which
// would land month-end dates back in the current month.
func PreviousMonth(now time.Time) (int, int) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prev := first.AddDate(0, 0, -1)
	return prev.Year(), int(prev.Month())
}

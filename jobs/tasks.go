package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity scans journal entries whose totals disagree with their lines.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportsWarmup prebuilds current-year reports into the cache.
	TaskReportsWarmup = "reports:warmup"
)

// LedgerIntegrityPayload narrows the scan to one company. Zero scans all.
type LedgerIntegrityPayload struct {
	CompanyID int64 `json:"company_id"`
}

// ReportsWarmupPayload narrows the warmup to one company. Zero warms every
// company with entries.
type ReportsWarmupPayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewLedgerIntegrityTask constructs an integrity scan task.
func NewLedgerIntegrityTask(companyID int64) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerIntegrityPayload{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// NewReportsWarmupTask constructs a report warmup task.
func NewReportsWarmupTask(companyID int64) (*asynq.Task, error) {
	data, err := json.Marshal(ReportsWarmupPayload{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian-erp/internal/payables"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAgingWarmup precomputes payables aging reports into the cache.
	TaskAgingWarmup = "aging:warmup"
)

// AgingWarmupPayload selects which reports the warmup run covers.
// Empty Kinds means both ledgers.
type AgingWarmupPayload struct {
	CompanyID string                `json:"company_id"`
	Kinds     []payables.ReportKind `json:"kinds,omitempty"`
}

// NewAgingWarmupTask constructs an Asynq task for one company.
func NewAgingWarmupTask(payload AgingWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAgingWarmup, data, asynq.Queue(QueueDefault)), nil
}

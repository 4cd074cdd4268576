package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian-erp/internal/payables"
)

// AgingWarmupJob precomputes the year-to-date aging reports for a
// company so the first analyst request of the day hits the cache.
type AgingWarmupJob struct {
	Reports *payables.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewAgingWarmupJob wires dependencies for the warmup handler.
func NewAgingWarmupJob(reports *payables.Service, logger *slog.Logger) *AgingWarmupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgingWarmupJob{
		Reports: reports,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskAgingWarmup tasks. A failing kind does not stop
// the remaining kinds; the task fails only if every report failed.
func (j *AgingWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("aging warmup: handler not configured")
	}
	var payload AgingWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.CompanyID == "" {
		return asynq.SkipRetry
	}
	kinds := payload.Kinds
	if len(kinds) == 0 {
		kinds = []payables.ReportKind{payables.ReportTrade, payables.ReportFreight}
	}

	now := j.clock()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	to := endOfMonth(now)

	var failed int
	for _, kind := range kinds {
		report, err := j.Reports.AgingReport(ctx, payables.AgingReportRequest{
			CompanyID: payload.CompanyID,
			Kind:      kind,
			DateFrom:  from,
			DateTo:    to,
		})
		if err != nil {
			failed++
			j.Logger.Error("aging warmup failed",
				slog.String("company_id", payload.CompanyID),
				slog.String("kind", string(kind)),
				slog.Any("error", err))
			continue
		}
		j.Logger.Info("aging warmup complete",
			slog.String("company_id", payload.CompanyID),
			slog.String("kind", string(kind)),
			slog.String("run_id", report.RunID.String()),
			slog.Int("rows", len(report.Rows)))
	}
	if failed == len(kinds) {
		return errors.New("aging warmup: all reports failed")
	}
	return nil
}

func endOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/blob"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
)

// progressTracker accumulates step history during a pipeline run and
// persists it as the task's progress blob at step boundaries. Progress is
// advisory: a failed write is logged and execution continues.
type progressTracker struct {
	store  blob.Store
	taskID string
	logger *slog.Logger
	steps  []task.ProgressStep
}

func newProgressTracker(store blob.Store, taskID string, logger *slog.Logger) *progressTracker {
	return &progressTracker{
		store:  store,
		taskID: taskID,
		logger: logger,
	}
}

// update records the step transition and writes the progress blob.
func (p *progressTracker) update(ctx context.Context, percentage int, stepName, stepStatus string) {
	p.steps = append(p.steps, task.ProgressStep{
		StepName:  stepName,
		Status:    stepStatus,
		Timestamp: time.Now().UTC(),
	})

	record := task.ProgressRecord{
		Percentage:    percentage,
		CurrentStep:   stepName,
		DetailedSteps: p.steps,
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		p.logger.Error("failed to encode progress record", "error", err)
		return
	}

	if err := p.store.Set(ctx, task.ProgressKey(p.taskID), encoded); err != nil {
		p.logger.Warn("failed to persist progress record", "error", err)
	}
}

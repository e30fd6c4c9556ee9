package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/analysis"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/blob"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/dispatch"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
	"github.com/google/uuid"
)

// resultVersion tags aggregated results so clients can detect schema changes.
const resultVersion = "v2.1"

// aggregateConfidence is the fixed confidence value stamped on results.
const aggregateConfidence = 0.8

// Worker executes dispatched analysis pipelines and reports completion to
// the webhook endpoint.
type Worker struct {
	analyzer   analysis.Analyzer
	store      blob.Store
	reporter   CompletionReporter
	logger     *slog.Logger
	instanceID string
}

// New creates a worker. The instance ID identifies this process in
// result metadata (the processedBy field).
func New(analyzer analysis.Analyzer, store blob.Store, reporter CompletionReporter, logger *slog.Logger) *Worker {
	return &Worker{
		analyzer:   analyzer,
		store:      store,
		reporter:   reporter,
		logger:     logger.With("component", "worker"),
		instanceID: uuid.New().String(),
	}
}

// Run executes the pipeline for the payload's task type and reports the
// outcome. Errors never propagate back to the dispatching caller, who has
// already received its 202; they surface only through the webhook record.
func (w *Worker) Run(ctx context.Context, payload dispatch.Payload) {
	logger := w.logger.With("task_id", payload.TaskID, "task_type", payload.TaskType)
	logger.Info("starting task execution")

	tracker := newProgressTracker(w.store, payload.TaskID, logger)

	result, usage, err := w.execute(ctx, payload, tracker, logger)
	metadata := w.metadata(usage)

	if err != nil {
		logger.Error("task execution failed", "error", err)
		w.reporter.Report(ctx, Completion{
			TaskID:   payload.TaskID,
			Status:   task.StatusFailed,
			Error:    err.Error(),
			Metadata: metadata,
		})
		return
	}

	logger.Info("task execution completed")
	w.reporter.Report(ctx, Completion{
		TaskID:   payload.TaskID,
		Status:   task.StatusCompleted,
		Result:   result,
		Metadata: metadata,
	})
}

// execute selects and runs the pipeline for the task type.
func (w *Worker) execute(
	ctx context.Context,
	payload dispatch.Payload,
	tracker *progressTracker,
	logger *slog.Logger,
) (json.RawMessage, analysis.Usage, error) {
	switch task.Type(payload.TaskType) {
	case task.TypeExtractMVV:
		return w.runExtractMVV(ctx, payload, tracker, logger)
	case task.TypeGenerateIdeas:
		return w.runGenerateIdeas(ctx, payload, tracker, logger)
	case task.TypeVerifyIdea:
		return w.runVerifyIdea(ctx, payload, tracker, logger)
	default:
		return nil, analysis.Usage{}, fmt.Errorf("%w: %q", task.ErrUnknownType, payload.TaskType)
	}
}

// metadata builds the result metadata block: model identifiers, token and
// cost accounting, fixed confidence, version tag and worker identity.
func (w *Worker) metadata(usage analysis.Usage) map[string]any {
	meta := map[string]any{
		"confidence":  aggregateConfidence,
		"version":     resultVersion,
		"processedBy": w.instanceID,
		"totalCost":   usage.Cost,
		"tokenUsage": map[string]int{
			"input":  usage.InputTokens,
			"output": usage.OutputTokens,
		},
	}
	if usage.Model != "" {
		meta["modelsUsed"] = []string{usage.Model}
	}
	return meta
}

// stepOutput is one analysis step's contribution to the aggregated result.
// FallbackUsed marks entries whose analysis failed and was substituted.
type stepOutput struct {
	Data           json.RawMessage `json:"data,omitempty"`
	FallbackUsed   bool            `json:"fallbackUsed,omitempty"`
	FallbackReason string          `json:"fallbackReason,omitempty"`
}

// fallbackOutput builds the clearly-marked placeholder substituted for a
// failed non-mandatory step.
func fallbackOutput(err error) stepOutput {
	return stepOutput{
		Data:           json.RawMessage(`{"unavailable":true,"note":"analysis could not be completed"}`),
		FallbackUsed:   true,
		FallbackReason: err.Error(),
	}
}

// mandatoryStep runs an analysis step whose failure fails the whole task.
func (w *Worker) mandatoryStep(
	ctx context.Context,
	kind string,
	input map[string]any,
	usage *analysis.Usage,
	logger *slog.Logger,
) (stepOutput, error) {
	data, stepUsage, err := w.analyzer.Analyze(ctx, kind, input)
	usage.Add(stepUsage)
	if err != nil {
		return stepOutput{}, fmt.Errorf("mandatory step %s failed: %w", kind, err)
	}
	logger.Debug("analysis step completed", "kind", kind)
	return stepOutput{Data: data}, nil
}

// optionalStep runs an analysis step whose failure is absorbed into a
// flagged fallback object.
func (w *Worker) optionalStep(
	ctx context.Context,
	kind string,
	input map[string]any,
	usage *analysis.Usage,
	logger *slog.Logger,
) stepOutput {
	data, stepUsage, err := w.analyzer.Analyze(ctx, kind, input)
	usage.Add(stepUsage)
	if err != nil {
		logger.Warn("analysis step failed, substituting fallback", "kind", kind, "error", err)
		return fallbackOutput(err)
	}
	logger.Debug("analysis step completed", "kind", kind)
	return stepOutput{Data: data}
}

// fanoutBranch is one parallel sub-analysis in a fan-out.
type fanoutBranch struct {
	name string
	kind string
}

// settledOutcome pairs a branch with its individually-inspected result.
type settledOutcome struct {
	data  json.RawMessage
	usage analysis.Usage
	err   error
}

// settleAll fires all branches concurrently against the same input and
// waits for every one to settle. It never fails fast: each branch's
// outcome is recorded independently so the caller can substitute
// fallbacks per failure.
func (w *Worker) settleAll(ctx context.Context, branches []fanoutBranch, input map[string]any) []settledOutcome {
	outcomes := make([]settledOutcome, len(branches))

	var wg sync.WaitGroup
	for i, branch := range branches {
		wg.Add(1)
		go func(i int, branch fanoutBranch) {
			defer wg.Done()
			data, usage, err := w.analyzer.Analyze(ctx, branch.kind, input)
			outcomes[i] = settledOutcome{data: data, usage: usage, err: err}
		}(i, branch)
	}
	wg.Wait()

	return outcomes
}

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/api/shared"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/dispatch"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
)

// Poll interval recommendations returned with a 202, in milliseconds.
const (
	defaultPollIntervalMS = 2000
	slowPollIntervalMS    = 5000
)

// TaskDispatcher abstracts the dispatch client so handler tests can
// script dispatch outcomes.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, route string, payload dispatch.Payload) (*dispatch.Outcome, error)
}

// TaskHandler implements the submission gateway: it validates the
// request, mints the task ID, dispatches to the background worker and
// returns immediately with a polling URL.
type TaskHandler struct {
	dispatcher TaskDispatcher
	baseURL    string
	logger     *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(dispatcher TaskDispatcher, baseURL string, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		dispatcher: dispatcher,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With("component", "task_handler"),
	}
}

// StartTask handles POST /api/start-async-task requests.
func (h *TaskHandler) StartTask(w http.ResponseWriter, r *http.Request) {
	var req StartTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: taskType and taskData are required")
		return
	}

	taskType := task.Type(req.TaskType)
	def, err := task.Lookup(taskType)
	if err != nil {
		// Reject unknown types with the full supported set so the caller
		// can self-correct. No dispatch happens.
		shared.RespondWithJSON(w, r, http.StatusBadRequest, shared.ErrorResponse{
			Error:          GetSafeErrorMessage(err),
			TraceID:        shared.GetTraceID(r.Context()),
			SupportedTypes: task.SupportedTypes(),
		})
		return
	}

	now := time.Now()
	taskID := task.NewID(taskType, now)
	estimate := task.EstimateDuration(taskType, req.TaskData)

	var warnings []string

	// Field presence is checked informationally: workers substitute
	// fallbacks, so submission proceeds with a warning.
	if missing := task.MissingFields(taskType, req.TaskData); len(missing) > 0 {
		h.logger.Warn("task submitted with missing recommended fields",
			"task_id", taskID,
			"task_type", req.TaskType,
			"missing_fields", missing)
		warnings = append(warnings,
			fmt.Sprintf("taskData is missing recommended fields: %s", strings.Join(missing, ", ")))
	}

	payload := dispatch.Payload{
		TaskID:   taskID,
		TaskType: req.TaskType,
		TaskData: req.TaskData,
		Metadata: h.dispatchMetadata(r, req, estimate),

		SubmittedAt: now,
	}

	outcome, err := h.dispatcher.Dispatch(r.Context(), def.Route, payload)
	if err != nil {
		// The worker was never reached; the task did not start.
		shared.RespondWithErrorAndLog(w, r, http.StatusBadGateway,
			"Failed to start background task", err)
		return
	}
	if outcome.Warning != "" {
		warnings = append(warnings, outcome.Warning)
	}

	interval := int64(defaultPollIntervalMS)
	if estimate > time.Minute {
		interval = slowPollIntervalMS
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, StartTaskResponse{
		TaskID:              taskID,
		Status:              string(task.StatusQueued),
		PollingURL:          fmt.Sprintf("%s/api/task-status?taskId=%s", h.baseURL, taskID),
		StatusCheckInterval: interval,
		EstimatedDuration:   estimate.Milliseconds(),
		Warnings:            warnings,
	})
}

// dispatchMetadata assembles the metadata injected alongside the caller's
// payload: initiator identity, priority hint, duration estimate.
func (h *TaskHandler) dispatchMetadata(r *http.Request, req StartTaskRequest, estimate time.Duration) map[string]any {
	metadata := make(map[string]any, len(req.Metadata)+3)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["initiator"] = r.RemoteAddr
	metadata["estimatedDurationMs"] = estimate.Milliseconds()
	if req.Priority != "" {
		metadata["priority"] = req.Priority
	}
	return metadata
}

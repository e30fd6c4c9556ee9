package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/api/shared"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/dispatch"
	"github.com/go-chi/chi/v5"
)

// TaskRunner abstracts the worker so handler tests can observe
// invocations.
type TaskRunner interface {
	Run(ctx context.Context, payload dispatch.Payload)
}

// WorkerHandler exposes the background worker as internal HTTP endpoints,
// one route per pipeline. The gateway dispatches here and times out long
// before the pipeline finishes; the response mostly goes unread.
type WorkerHandler struct {
	runner TaskRunner
	logger *slog.Logger
}

// NewWorkerHandler creates a WorkerHandler.
func NewWorkerHandler(runner TaskRunner, logger *slog.Logger) *WorkerHandler {
	return &WorkerHandler{
		runner: runner,
		logger: logger.With("component", "worker_handler"),
	}
}

// Invoke handles POST /internal/worker/{route} requests, running the
// pipeline to completion before responding.
func (h *WorkerHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	route := chi.URLParam(r, "route")

	var payload dispatch.Payload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid dispatch payload")
		return
	}
	if payload.TaskID == "" || payload.TaskType == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "taskId and taskType are required")
		return
	}

	h.logger.Info("worker invocation received",
		"route", route,
		"task_id", payload.TaskID,
		"task_type", payload.TaskType)

	// The dispatcher hangs up after its short timeout, which would cancel
	// the request context mid-pipeline. Detach cancellation so the task
	// runs to completion regardless of the caller's fate.
	h.runner.Run(context.WithoutCancel(r.Context()), payload)

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"taskId":  payload.TaskID,
	})
}

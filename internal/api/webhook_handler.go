package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/api/shared"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/blob"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
)

// WebhookHandler receives worker completion callbacks and persists them
// as the task's terminal record. It is the only writer of result records.
type WebhookHandler struct {
	store  blob.Store
	logger *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(store blob.Store, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		store:  store,
		logger: logger.With("component", "webhook_handler"),
	}
}

// HandleCompletion handles POST /internal/webhook-task-complete requests.
// A duplicate callback for the same task simply overwrites the prior
// record; last write wins.
func (h *WebhookHandler) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Validation error: taskId and status (completed|failed) are required")
		return
	}

	now := time.Now().UTC()
	metadata := make(map[string]any, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["completedAt"] = now.Format(time.RFC3339Nano)

	record := task.ResultRecord{
		TaskID:   req.TaskID,
		Status:   task.Status(req.Status),
		Result:   req.Result,
		Error:    req.Error,
		Metadata: metadata,
		Timestamps: task.Timestamps{
			ReceivedAt:  now,
			CompletedAt: now,
		},
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to encode task record", err)
		return
	}

	if err := h.store.Set(r.Context(), req.TaskID, encoded); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to persist task record", err)
		return
	}

	// Read-back check: the store has no transactional guarantee, so
	// verify the write landed and log any discrepancy.
	stored, err := h.store.Get(r.Context(), req.TaskID)
	switch {
	case err != nil:
		h.logger.Error("read-back after result write failed",
			"task_id", req.TaskID, "error", err)
	case !bytes.Equal(stored, encoded):
		h.logger.Error("read-back returned different bytes than written",
			"task_id", req.TaskID,
			"written_len", len(encoded),
			"stored_len", len(stored))
	}

	h.logger.Info("task result recorded",
		"task_id", req.TaskID,
		"status", req.Status)

	shared.RespondWithJSON(w, r, http.StatusOK, WebhookResponse{
		Success: true,
		TaskID:  req.TaskID,
	})
}

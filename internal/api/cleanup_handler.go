package api

import (
	"log/slog"
	"net/http"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/api/shared"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/blob"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
)

// CleanupHandler deletes a task's blobs once the client has consumed
// them. It is the only deleter in the system. Cleanup is advisory: safe
// to skip, safe to repeat.
type CleanupHandler struct {
	store  blob.Store
	logger *slog.Logger
}

// NewCleanupHandler creates a CleanupHandler.
func NewCleanupHandler(store blob.Store, logger *slog.Logger) *CleanupHandler {
	return &CleanupHandler{
		store:  store,
		logger: logger.With("component", "cleanup_handler"),
	}
}

// Cleanup handles DELETE /api/cleanup-task-blob requests. Deleting a blob
// that never existed is success; the per-target outcome records whether
// anything was actually removed.
func (h *CleanupHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	var req CleanupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Validation error: taskId is required; cleanup must be all, result or progress")
		return
	}

	scope := req.Cleanup
	if scope == "" {
		scope = "all"
	}

	targets := make(map[string]string, 2)
	if scope == "all" || scope == "result" {
		targets["result"] = req.TaskID
	}
	if scope == "all" || scope == "progress" {
		targets["progress"] = task.ProgressKey(req.TaskID)
	}

	results := make([]CleanupTargetOutcome, 0, len(targets))
	deleted := 0
	for _, name := range []string{"result", "progress"} {
		key, ok := targets[name]
		if !ok {
			continue
		}
		existed, err := h.store.Delete(r.Context(), key)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to delete task blob", err)
			return
		}
		if existed {
			deleted++
		}
		results = append(results, CleanupTargetOutcome{Target: name, Existed: existed})
	}

	h.logger.Info("task blobs cleaned up",
		"task_id", req.TaskID,
		"scope", scope,
		"deleted_count", deleted)

	shared.RespondWithJSON(w, r, http.StatusOK, CleanupResponse{
		TaskID:       req.TaskID,
		Results:      results,
		DeletedCount: deleted,
	})
}

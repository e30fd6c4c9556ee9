package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/api/shared"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/blob"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
)

// StatusHandler serves the poll, result and progress endpoints. It only
// ever reads from the store; persisted records are authoritative and
// in-flight state is inferred from task ID age.
type StatusHandler struct {
	store  blob.Store
	logger *slog.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(store blob.Store, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		store:  store,
		logger: logger.With("component", "status_handler"),
	}
}

// GetStatus handles GET /api/task-status requests. Resolution order: the
// persisted result record if one exists, otherwise age-based inference
// from the ID's embedded timestamp, otherwise 404.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("taskId")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "taskId query parameter is required")
		return
	}
	includeResult := r.URL.Query().Get("includeResult") == "true"
	includeProgress := r.URL.Query().Get("includeProgress") == "true"

	raw, err := h.store.Get(r.Context(), taskID)
	switch {
	case err == nil:
		record, decodeErr := decodeRecord(raw)
		if decodeErr != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to decode task record", decodeErr)
			return
		}
		view := viewFromRecord(record, includeResult)
		if includeProgress {
			view.Progress = h.loadProgress(r, taskID)
		}
		shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{
			TaskID:   taskID,
			Data:     *view,
			Metadata: StatusMetadata{ContinuePoll: view.ContinuePoll},
		})

	case errors.Is(err, blob.ErrNotFound):
		view, inferErr := task.InferStatus(taskID, time.Now())
		if inferErr != nil {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		if includeProgress {
			// A worker-written progress blob beats the synthetic estimate.
			if progress := h.loadProgress(r, taskID); progress != nil {
				view.Progress = progress
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{
			TaskID:   taskID,
			Data:     *view,
			Metadata: StatusMetadata{ContinuePoll: view.ContinuePoll},
		})

	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to look up task", err)
	}
}

// GetResult handles GET /api/task-result requests: the terminal record or
// a 404, nothing inferred.
func (h *StatusHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("taskId")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "taskId query parameter is required")
		return
	}

	raw, err := h.store.Get(r.Context(), taskID)
	if errors.Is(err, blob.ErrNotFound) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task result not found")
		return
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to look up task result", err)
		return
	}

	record, decodeErr := decodeRecord(raw)
	if decodeErr != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to decode task record", decodeErr)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// GetProgress handles GET /api/task-progress requests. Progress blobs are
// optional, so a missing blob is a 200 with a null progress field.
func (h *StatusHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("taskId")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "taskId query parameter is required")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{
		TaskID:   taskID,
		Progress: h.loadProgress(r, taskID),
	})
}

// loadProgress reads and decodes the task's progress blob, returning nil
// when none exists or it cannot be decoded.
func (h *StatusHandler) loadProgress(r *http.Request, taskID string) *task.ProgressRecord {
	raw, err := h.store.Get(r.Context(), task.ProgressKey(taskID))
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			h.logger.Warn("failed to read progress blob", "task_id", taskID, "error", err)
		}
		return nil
	}

	var progress task.ProgressRecord
	if err := json.Unmarshal(raw, &progress); err != nil {
		h.logger.Warn("failed to decode progress blob", "task_id", taskID, "error", err)
		return nil
	}
	return &progress
}

// decodeRecord parses a persisted result record.
func decodeRecord(raw []byte) (*task.ResultRecord, error) {
	var record task.ResultRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// viewFromRecord converts the authoritative persisted record into the
// status envelope. Terminal state means polling is over.
func viewFromRecord(record *task.ResultRecord, includeResult bool) *task.StatusView {
	view := &task.StatusView{
		TaskID:       record.TaskID,
		Status:       record.Status,
		Metadata:     record.Metadata,
		Timestamps:   &record.Timestamps,
		ContinuePoll: false,
	}
	if record.Error != "" {
		view.Error = &task.StatusError{
			Message:   record.Error,
			Retryable: false,
		}
	}
	if includeResult {
		view.Result = record.Result
	}
	return view
}

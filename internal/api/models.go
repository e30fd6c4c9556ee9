package api

import (
	"encoding/json"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
)

// StartTaskRequest is the submission body for a new async task.
type StartTaskRequest struct {
	TaskType string         `json:"taskType" validate:"required"`
	TaskData map[string]any `json:"taskData" validate:"required"`
	// Priority is accepted as a hint only; nothing enforces it.
	Priority string         `json:"priority,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// StartTaskResponse acknowledges an accepted submission.
type StartTaskResponse struct {
	TaskID string `json:"taskId"`
	Status string `json:"status"`
	// PollingURL is where the client should check task state.
	PollingURL string `json:"pollingUrl"`
	// StatusCheckInterval is the recommended poll interval in milliseconds.
	StatusCheckInterval int64 `json:"statusCheckInterval"`
	// EstimatedDuration is the expected task duration in milliseconds.
	EstimatedDuration int64 `json:"estimatedDuration"`
	// Warnings carries non-blocking submission notes, e.g. missing
	// recommended taskData fields or an unacknowledged dispatch.
	Warnings []string `json:"warnings,omitempty"`
}

// WebhookRequest is the worker's terminal callback body.
type WebhookRequest struct {
	TaskID   string          `json:"taskId" validate:"required"`
	Status   string          `json:"status" validate:"required,oneof=completed failed"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

// WebhookResponse acknowledges a recorded completion.
type WebhookResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"taskId"`
}

// StatusResponse is the poller's uniform status envelope.
type StatusResponse struct {
	TaskID   string          `json:"taskId"`
	Data     task.StatusView `json:"data"`
	Metadata StatusMetadata  `json:"metadata"`
}

// StatusMetadata carries polling control flags alongside the status data.
type StatusMetadata struct {
	// ContinuePoll tells the client whether further polling can change
	// the answer.
	ContinuePoll bool `json:"continuePoll"`
}

// ProgressResponse wraps a task's progress record; Progress is null when
// the worker never wrote one.
type ProgressResponse struct {
	TaskID   string               `json:"taskId"`
	Progress *task.ProgressRecord `json:"progress"`
}

// CleanupRequest names the task blobs to delete.
type CleanupRequest struct {
	TaskID string `json:"taskId" validate:"required"`
	// Cleanup selects the scope; empty defaults to "all".
	Cleanup string `json:"cleanup,omitempty" validate:"omitempty,oneof=all result progress"`
}

// CleanupTargetOutcome reports one target's deletion result.
type CleanupTargetOutcome struct {
	Target  string `json:"target"`
	Existed bool   `json:"existed"`
}

// CleanupResponse summarizes a cleanup call.
type CleanupResponse struct {
	TaskID       string                 `json:"taskId"`
	Results      []CleanupTargetOutcome `json:"results"`
	DeletedCount int                    `json:"deletedCount"`
}

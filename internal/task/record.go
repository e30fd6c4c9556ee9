package task

import (
	"encoding/json"
	"time"
)

// Status represents the client-visible state of a task.
type Status string

// Possible task status values.
const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Timestamps records when the terminal callback arrived and when the
// worker reported completion.
type Timestamps struct {
	ReceivedAt  time.Time `json:"receivedAt"`
	CompletedAt time.Time `json:"completedAt"`
}

// ResultRecord is the persisted terminal record for a task. It is written
// exactly once per webhook callback (last write wins on duplicates) and is
// the only authoritative source of task state.
type ResultRecord struct {
	TaskID     string          `json:"taskId"`
	Status     Status          `json:"status"` // completed or failed
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	Timestamps Timestamps      `json:"timestamps"`
}

// Terminal reports whether the record's status is a valid terminal state.
func (r *ResultRecord) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// ProgressStep is one entry in a task's step history.
type ProgressStep struct {
	StepName  string    `json:"stepName"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressRecord is the optional progress blob a worker may write during
// execution, keyed separately from the result record. Its presence is
// never guaranteed.
type ProgressRecord struct {
	Percentage    int            `json:"percentage"`
	CurrentStep   string         `json:"currentStep"`
	DetailedSteps []ProgressStep `json:"detailedSteps,omitempty"`
}

// StatusError carries a client-facing error with a retryability hint.
type StatusError struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// StatusView is the computed status envelope returned by the poller. It is
// derived from the persisted record when one exists, or inferred from the
// task ID's embedded age otherwise. Never persisted.
type StatusView struct {
	TaskID               string          `json:"taskId"`
	Status               Status          `json:"status"`
	Progress             *ProgressRecord `json:"progress,omitempty"`
	Result               json.RawMessage `json:"result,omitempty"`
	Error                *StatusError    `json:"error,omitempty"`
	Timestamps           *Timestamps     `json:"timestamps,omitempty"`
	Metadata             map[string]any  `json:"metadata,omitempty"`
	EstimatedRemainingMS int64           `json:"estimatedRemainingMs,omitempty"`
	ContinuePoll         bool            `json:"-"`
}

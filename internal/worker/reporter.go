package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/dispatch"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
)

// Completion is the terminal callback a worker sends when a task finishes.
type Completion struct {
	TaskID   string          `json:"taskId"`
	Status   task.Status     `json:"status"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

// CompletionReporter delivers a worker's terminal callback.
type CompletionReporter interface {
	Report(ctx context.Context, completion Completion)
}

// WebhookReporter posts completions to the webhook endpoint with a short
// timeout. Delivery failures are logged and swallowed: the worker's own
// completion must not block on webhook delivery. If delivery fails the
// result is lost and the client's poll eventually times the task out.
type WebhookReporter struct {
	url    string
	token  string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookReporter creates a reporter targeting the webhook URL.
func NewWebhookReporter(url, token string, timeout time.Duration, logger *slog.Logger) *WebhookReporter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookReporter{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
		logger: logger.With("component", "webhook_reporter"),
	}
}

// Report posts the completion. Errors are logged, never returned.
func (r *WebhookReporter) Report(ctx context.Context, completion Completion) {
	body, err := json.Marshal(completion)
	if err != nil {
		r.logger.Error("failed to encode completion callback",
			"task_id", completion.TaskID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		r.logger.Error("failed to build completion callback request",
			"task_id", completion.TaskID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(dispatch.InternalTokenHeader, r.token)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("completion callback delivery failed, task result may be lost",
			"task_id", completion.TaskID,
			"status", completion.Status,
			"error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		r.logger.Error("completion callback rejected by webhook endpoint",
			"task_id", completion.TaskID,
			"status_code", resp.StatusCode)
		return
	}

	r.logger.Info("completion callback delivered",
		"task_id", completion.TaskID,
		"status", completion.Status)
}

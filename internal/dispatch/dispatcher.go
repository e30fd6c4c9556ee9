// Package dispatch implements the gateway's hand-off of accepted tasks to
// background worker endpoints over HTTP.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// InternalTokenHeader carries the shared secret that authenticates
// component-to-component calls.
const InternalTokenHeader = "X-Internal-Token"

// Payload is the body posted to a worker endpoint: the original task data
// plus the metadata the gateway injects.
type Payload struct {
	TaskID      string         `json:"taskId"`
	TaskType    string         `json:"taskType"`
	TaskData    map[string]any `json:"taskData"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// Outcome reports how a dispatch attempt was resolved.
type Outcome struct {
	// Accepted is true when the worker is believed to be running the task.
	Accepted bool
	// Warning is set when acceptance was assumed rather than confirmed
	// (the dispatch call timed out while the worker kept going).
	Warning string
}

// Dispatcher posts task payloads to worker endpoints with a bounded
// timeout. The timeout is deliberately much shorter than the expected
// task duration: workers execute beyond the lifetime of this call.
type Dispatcher struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher targeting the given worker base URL.
func NewDispatcher(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With("component", "dispatcher"),
	}
}

// Dispatch posts the payload to the worker route. Failure semantics are
// asymmetric on purpose:
//
//   - unreachable worker: returned as an error, the task never started
//   - timeout waiting for a response: treated as accepted-with-warning,
//     because slow-to-acknowledge is not the same as failed-to-start
func (d *Dispatcher) Dispatch(ctx context.Context, route string, payload Payload) (*Outcome, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dispatch payload: %w", err)
	}

	url := fmt.Sprintf("%s/internal/worker/%s", d.baseURL, route)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(InternalTokenHeader, d.token)

	d.logger.Info("dispatching task to worker",
		"task_id", payload.TaskID,
		"task_type", payload.TaskType,
		"route", route)

	resp, err := d.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			// The worker very likely received the request and is still
			// executing; report acceptance with a warning.
			d.logger.Warn("dispatch call timed out, assuming worker is running",
				"task_id", payload.TaskID, "route", route)
			return &Outcome{
				Accepted: true,
				Warning:  "worker did not acknowledge within the dispatch timeout; task is likely still running",
			}, nil
		}
		return nil, fmt.Errorf("failed to reach worker endpoint %s: %w", route, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("worker endpoint %s rejected dispatch: status %d", route, resp.StatusCode)
	}

	return &Outcome{Accepted: true}, nil
}

// isTimeout distinguishes deadline expiry from connection-level failures.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

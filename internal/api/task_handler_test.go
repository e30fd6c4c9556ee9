package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/dispatch"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockDispatcher records the dispatch call and returns a scripted outcome.
type mockDispatcher struct {
	route   string
	payload dispatch.Payload
	called  bool

	outcome *dispatch.Outcome
	err     error
}

func (m *mockDispatcher) Dispatch(ctx context.Context, route string, payload dispatch.Payload) (*dispatch.Outcome, error) {
	m.called = true
	m.route = route
	m.payload = payload
	if m.err != nil {
		return nil, m.err
	}
	if m.outcome != nil {
		return m.outcome, nil
	}
	return &dispatch.Outcome{Accepted: true}, nil
}

func postStartTask(t *testing.T, handler *TaskHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/start-async-task", bytes.NewReader(encoded))
	rec := httptest.NewRecorder()
	handler.StartTask(rec, req)
	return rec
}

func TestStartTaskAcceptsValidSubmission(t *testing.T) {
	dispatcher := &mockDispatcher{}
	handler := NewTaskHandler(dispatcher, "http://localhost:8080", testLogger())

	rec := postStartTask(t, handler, StartTaskRequest{
		TaskType: "extract-mvv",
		TaskData: map[string]any{"companyId": "c-1", "companyName": "Acme"},
	})

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp StartTaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, strings.HasPrefix(resp.TaskID, "async_"))
	_, err := task.ParseID(resp.TaskID)
	assert.NoError(t, err)

	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, int64(30000), resp.EstimatedDuration)
	assert.Contains(t, resp.PollingURL, "/api/task-status?taskId="+resp.TaskID)
	assert.Greater(t, resp.StatusCheckInterval, int64(0))
	assert.Empty(t, resp.Warnings)

	require.True(t, dispatcher.called)
	assert.Equal(t, "analyze-mvv", dispatcher.route)
	assert.Equal(t, resp.TaskID, dispatcher.payload.TaskID)
	assert.Equal(t, "extract-mvv", dispatcher.payload.TaskType)
}

func TestStartTaskRejectsUnknownTypeWithoutDispatching(t *testing.T) {
	dispatcher := &mockDispatcher{}
	handler := NewTaskHandler(dispatcher, "http://localhost:8080", testLogger())

	rec := postStartTask(t, handler, StartTaskRequest{
		TaskType: "bogus-type",
		TaskData: map[string]any{"x": 1},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, dispatcher.called)

	var resp struct {
		Error          string   `json:"error"`
		SupportedTypes []string `json:"supportedTypes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, task.SupportedTypes(), resp.SupportedTypes)
	assert.Contains(t, resp.Error, "extract-mvv")
}

func TestStartTaskRejectsMissingTaskData(t *testing.T) {
	dispatcher := &mockDispatcher{}
	handler := NewTaskHandler(dispatcher, "http://localhost:8080", testLogger())

	rec := postStartTask(t, handler, map[string]any{"taskType": "extract-mvv"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, dispatcher.called)
}

func TestStartTaskWarnsOnMissingRecommendedFields(t *testing.T) {
	dispatcher := &mockDispatcher{}
	handler := NewTaskHandler(dispatcher, "http://localhost:8080", testLogger())

	rec := postStartTask(t, handler, StartTaskRequest{
		TaskType: "extract-mvv",
		TaskData: map[string]any{"companyName": "Acme"},
	})

	// Missing fields are informational; submission still proceeds.
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, dispatcher.called)

	var resp StartTaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "companyId")
}

func TestStartTaskUnreachableWorkerIsBadGateway(t *testing.T) {
	dispatcher := &mockDispatcher{err: errors.New("connection refused")}
	handler := NewTaskHandler(dispatcher, "http://localhost:8080", testLogger())

	rec := postStartTask(t, handler, StartTaskRequest{
		TaskType: "extract-mvv",
		TaskData: map[string]any{"companyId": "c-1", "companyName": "Acme"},
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestStartTaskDispatchTimeoutIsAcceptedWithWarning(t *testing.T) {
	dispatcher := &mockDispatcher{outcome: &dispatch.Outcome{
		Accepted: true,
		Warning:  "worker did not acknowledge within the dispatch timeout",
	}}
	handler := NewTaskHandler(dispatcher, "http://localhost:8080", testLogger())

	rec := postStartTask(t, handler, StartTaskRequest{
		TaskType: "verify-idea",
		TaskData: map[string]any{"originalIdea": "robot florists", "verificationLevel": "expert"},
	})

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp StartTaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "dispatch timeout")

	// Expert verification is the slow bucket, so the recommended poll
	// interval backs off.
	assert.Equal(t, int64(120000), resp.EstimatedDuration)
	assert.Equal(t, int64(slowPollIntervalMS), resp.StatusCheckInterval)
}

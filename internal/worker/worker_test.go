package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/analysis"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/blob"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/dispatch"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAnalyzer returns scripted results or errors per analysis kind.
type mockAnalyzer struct {
	failKinds map[string]error
}

func (m *mockAnalyzer) Analyze(ctx context.Context, kind string, input map[string]any) (json.RawMessage, analysis.Usage, error) {
	if err, ok := m.failKinds[kind]; ok {
		return nil, analysis.Usage{Model: "mock-model"}, err
	}
	result, _ := json.Marshal(map[string]string{"kind": kind})
	return result, analysis.Usage{
		Model:        "mock-model",
		InputTokens:  100,
		OutputTokens: 50,
		Cost:         0.001,
	}, nil
}

// captureReporter records the completion it receives.
type captureReporter struct {
	completion *Completion
}

func (c *captureReporter) Report(ctx context.Context, completion Completion) {
	c.completion = &completion
}

func testWorkerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestWorker(failKinds map[string]error) (*Worker, *captureReporter, *blob.MemoryStore) {
	store := blob.NewMemoryStore()
	reporter := &captureReporter{}
	w := New(&mockAnalyzer{failKinds: failKinds}, store, reporter, testWorkerLogger())
	return w, reporter, store
}

func extractPayload(taskID string) dispatch.Payload {
	return dispatch.Payload{
		TaskID:      taskID,
		TaskType:    string(task.TypeExtractMVV),
		TaskData:    map[string]any{"companyId": "c-1", "companyName": "Acme"},
		SubmittedAt: time.Now(),
	}
}

func decodeResult(t *testing.T, completion *Completion) map[string]stepOutput {
	t.Helper()
	var results map[string]stepOutput
	require.NoError(t, json.Unmarshal(completion.Result, &results))
	return results
}

func TestRunExtractMVVSuccess(t *testing.T) {
	w, reporter, store := newTestWorker(nil)
	taskID := task.NewID(task.TypeExtractMVV, time.Now())

	w.Run(context.Background(), extractPayload(taskID))

	require.NotNil(t, reporter.completion)
	assert.Equal(t, task.StatusCompleted, reporter.completion.Status)
	assert.Equal(t, taskID, reporter.completion.TaskID)

	results := decodeResult(t, reporter.completion)
	require.Contains(t, results, "companyResearch")
	require.Contains(t, results, "mvvExtraction")
	assert.False(t, results["companyResearch"].FallbackUsed)
	assert.False(t, results["mvvExtraction"].FallbackUsed)

	// Progress was persisted along the way.
	raw, err := store.Get(context.Background(), task.ProgressKey(taskID))
	require.NoError(t, err)
	var progress task.ProgressRecord
	require.NoError(t, json.Unmarshal(raw, &progress))
	assert.Equal(t, 95, progress.Percentage)
	assert.NotEmpty(t, progress.DetailedSteps)
}

func TestRunExtractMVVMandatoryStepFailureFailsTask(t *testing.T) {
	w, reporter, _ := newTestWorker(map[string]error{
		analysis.KindCompanyResearch: errors.New("research exploded"),
	})

	w.Run(context.Background(), extractPayload(task.NewID(task.TypeExtractMVV, time.Now())))

	require.NotNil(t, reporter.completion)
	assert.Equal(t, task.StatusFailed, reporter.completion.Status)
	assert.Contains(t, reporter.completion.Error, "research exploded")
	assert.Nil(t, reporter.completion.Result)
}

func TestRunExtractMVVOptionalStepFailureUsesFallback(t *testing.T) {
	w, reporter, _ := newTestWorker(map[string]error{
		analysis.KindMVVExtraction: errors.New("extraction flaked"),
	})

	w.Run(context.Background(), extractPayload(task.NewID(task.TypeExtractMVV, time.Now())))

	require.NotNil(t, reporter.completion)
	assert.Equal(t, task.StatusCompleted, reporter.completion.Status)

	results := decodeResult(t, reporter.completion)
	assert.False(t, results["companyResearch"].FallbackUsed)
	assert.True(t, results["mvvExtraction"].FallbackUsed)
	assert.Contains(t, results["mvvExtraction"].FallbackReason, "extraction flaked")
}

func TestRunVerifyIdeaPartialBranchFailureStillCompletes(t *testing.T) {
	w, reporter, _ := newTestWorker(map[string]error{
		analysis.KindCompetitiveLandscape: errors.New("competitor scan failed"),
	})

	w.Run(context.Background(), dispatch.Payload{
		TaskID:   task.NewID(task.TypeVerifyIdea, time.Now()),
		TaskType: string(task.TypeVerifyIdea),
		TaskData: map[string]any{"originalIdea": "robot florists"},
	})

	require.NotNil(t, reporter.completion)
	assert.Equal(t, task.StatusCompleted, reporter.completion.Status)

	// Every branch appears in the aggregate; only the failed one is a
	// flagged fallback.
	results := decodeResult(t, reporter.completion)
	require.Contains(t, results, "industryAnalysis")
	require.Contains(t, results, "competitiveLandscape")
	require.Contains(t, results, "marketValidation")
	require.Contains(t, results, "verification")
	assert.False(t, results["industryAnalysis"].FallbackUsed)
	assert.True(t, results["competitiveLandscape"].FallbackUsed)
	assert.False(t, results["marketValidation"].FallbackUsed)
}

func TestRunVerifyIdeaSummaryFailureFailsTask(t *testing.T) {
	w, reporter, _ := newTestWorker(map[string]error{
		analysis.KindVerificationSummary: errors.New("summary broke"),
	})

	w.Run(context.Background(), dispatch.Payload{
		TaskID:   task.NewID(task.TypeVerifyIdea, time.Now()),
		TaskType: string(task.TypeVerifyIdea),
		TaskData: map[string]any{"originalIdea": "robot florists"},
	})

	require.NotNil(t, reporter.completion)
	assert.Equal(t, task.StatusFailed, reporter.completion.Status)
	assert.Contains(t, reporter.completion.Error, "summary broke")
}

func TestRunGenerateIdeasSuccess(t *testing.T) {
	w, reporter, _ := newTestWorker(nil)

	w.Run(context.Background(), dispatch.Payload{
		TaskID:   task.NewID(task.TypeGenerateIdeas, time.Now()),
		TaskType: string(task.TypeGenerateIdeas),
		TaskData: map[string]any{"companyData": map[string]any{"name": "Acme"}, "ideaCount": float64(5)},
	})

	require.NotNil(t, reporter.completion)
	assert.Equal(t, task.StatusCompleted, reporter.completion.Status)

	results := decodeResult(t, reporter.completion)
	require.Contains(t, results, "businessAnalysis")
	require.Contains(t, results, "ideaGeneration")
}

func TestRunUnknownTypeReportsFailure(t *testing.T) {
	w, reporter, _ := newTestWorker(nil)

	w.Run(context.Background(), dispatch.Payload{
		TaskID:   "async_1_task_x",
		TaskType: "bogus-type",
		TaskData: map[string]any{},
	})

	require.NotNil(t, reporter.completion)
	assert.Equal(t, task.StatusFailed, reporter.completion.Status)
	assert.Contains(t, reporter.completion.Error, "unknown task type")
}

func TestRunStampsResultMetadata(t *testing.T) {
	w, reporter, _ := newTestWorker(nil)

	w.Run(context.Background(), extractPayload(task.NewID(task.TypeExtractMVV, time.Now())))

	require.NotNil(t, reporter.completion)
	meta := reporter.completion.Metadata
	assert.Equal(t, 0.8, meta["confidence"])
	assert.Equal(t, "v2.1", meta["version"])
	assert.NotEmpty(t, meta["processedBy"])
	assert.Equal(t, []string{"mock-model"}, meta["modelsUsed"])

	tokens, ok := meta["tokenUsage"].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 200, tokens["input"])
	assert.Equal(t, 100, tokens["output"])
}

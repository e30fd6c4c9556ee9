package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/analysis"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/dispatch"
)

// runExtractMVV extracts a company's mission, vision and values. Company
// research is the mandatory first step; the extraction step falls back to
// a placeholder if the model call fails.
func (w *Worker) runExtractMVV(
	ctx context.Context,
	payload dispatch.Payload,
	tracker *progressTracker,
	logger *slog.Logger,
) (json.RawMessage, analysis.Usage, error) {
	var usage analysis.Usage

	tracker.update(ctx, 10, "company-research", "started")
	research, err := w.mandatoryStep(ctx, analysis.KindCompanyResearch, payload.TaskData, &usage, logger)
	if err != nil {
		tracker.update(ctx, 10, "company-research", "failed")
		return nil, usage, err
	}
	tracker.update(ctx, 50, "company-research", "completed")

	extractionInput := map[string]any{
		"companyInfo": research.Data,
		"taskData":    payload.TaskData,
	}
	tracker.update(ctx, 60, "mvv-extraction", "started")
	extraction := w.optionalStep(ctx, analysis.KindMVVExtraction, extractionInput, &usage, logger)
	tracker.update(ctx, 95, "mvv-extraction", stepStatus(extraction))

	return marshalResult(map[string]stepOutput{
		"companyResearch": research,
		"mvvExtraction":   extraction,
	}, usage)
}

// runGenerateIdeas analyzes the current business, then generates new
// business ideas grounded in that analysis.
func (w *Worker) runGenerateIdeas(
	ctx context.Context,
	payload dispatch.Payload,
	tracker *progressTracker,
	logger *slog.Logger,
) (json.RawMessage, analysis.Usage, error) {
	var usage analysis.Usage

	tracker.update(ctx, 10, "business-analysis", "started")
	businessAnalysis, err := w.mandatoryStep(ctx, analysis.KindBusinessAnalysis, payload.TaskData, &usage, logger)
	if err != nil {
		tracker.update(ctx, 10, "business-analysis", "failed")
		return nil, usage, err
	}
	tracker.update(ctx, 40, "business-analysis", "completed")

	generationInput := map[string]any{
		"businessAnalysis": businessAnalysis.Data,
		"taskData":         payload.TaskData,
	}
	if count, ok := payload.TaskData["ideaCount"]; ok {
		generationInput["ideaCount"] = count
	}
	tracker.update(ctx, 50, "idea-generation", "started")
	ideas := w.optionalStep(ctx, analysis.KindIdeaGeneration, generationInput, &usage, logger)
	tracker.update(ctx, 95, "idea-generation", stepStatus(ideas))

	return marshalResult(map[string]stepOutput{
		"businessAnalysis": businessAnalysis,
		"ideaGeneration":   ideas,
	}, usage)
}

// verifyBranches are the independent sub-analyses fanned out in parallel
// for idea verification. Each failure is substituted individually.
var verifyBranches = []fanoutBranch{
	{name: "industryAnalysis", kind: analysis.KindIndustryAnalysis},
	{name: "competitiveLandscape", kind: analysis.KindCompetitiveLandscape},
	{name: "marketValidation", kind: analysis.KindMarketValidation},
}

// runVerifyIdea verifies a business idea: three parallel sub-analyses with
// per-branch fallbacks, then a mandatory aggregation step over whatever
// the branches produced.
func (w *Worker) runVerifyIdea(
	ctx context.Context,
	payload dispatch.Payload,
	tracker *progressTracker,
	logger *slog.Logger,
) (json.RawMessage, analysis.Usage, error) {
	var usage analysis.Usage

	tracker.update(ctx, 10, "parallel-verification", "started")
	outcomes := w.settleAll(ctx, verifyBranches, payload.TaskData)

	results := make(map[string]stepOutput, len(verifyBranches)+1)
	summaryInput := map[string]any{"taskData": payload.TaskData}
	for i, branch := range verifyBranches {
		outcome := outcomes[i]
		usage.Add(outcome.usage)
		if outcome.err != nil {
			logger.Warn("verification branch failed, substituting fallback",
				"branch", branch.name, "error", outcome.err)
			results[branch.name] = fallbackOutput(outcome.err)
			continue
		}
		results[branch.name] = stepOutput{Data: outcome.data}
		summaryInput[branch.name] = outcome.data
	}
	tracker.update(ctx, 70, "parallel-verification", "completed")

	tracker.update(ctx, 80, "verification-summary", "started")
	summary, err := w.mandatoryStep(ctx, analysis.KindVerificationSummary, summaryInput, &usage, logger)
	if err != nil {
		tracker.update(ctx, 80, "verification-summary", "failed")
		return nil, usage, err
	}
	tracker.update(ctx, 95, "verification-summary", "completed")

	results["verification"] = summary
	return marshalResult(results, usage)
}

// stepStatus maps a step output to its progress-record status string.
func stepStatus(out stepOutput) string {
	if out.FallbackUsed {
		return "fallback"
	}
	return "completed"
}

// marshalResult serializes the aggregated step outputs.
func marshalResult(results map[string]stepOutput, usage analysis.Usage) (json.RawMessage, analysis.Usage, error) {
	encoded, err := json.Marshal(results)
	if err != nil {
		return nil, usage, fmt.Errorf("failed to encode aggregated result: %w", err)
	}
	return encoded, usage, nil
}

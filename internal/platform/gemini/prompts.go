package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/analysis"
)

// promptInstructions maps each analysis kind to the instruction block that
// precedes the serialized input. Every prompt demands a pure-JSON reply so
// responses can be passed through to clients without reshaping.
var promptInstructions = map[string]string{
	analysis.KindCompanyResearch: `Research the company described below. Return a JSON object with
fields "overview", "industry", "headquarters", "keyProducts" (array) and "recentNews" (array).`,

	analysis.KindMVVExtraction: `Extract the mission, vision and values of the company described
below. Return a JSON object with fields "mission", "vision", "values" (array of strings) and
"rationale".`,

	analysis.KindBusinessAnalysis: `Analyze the current business described below. Return a JSON
object with fields "strengths" (array), "weaknesses" (array), "opportunities" (array) and
"coreCompetencies" (array).`,

	analysis.KindIdeaGeneration: `Generate new business ideas consistent with the company data
below. Honor the "ideaCount" field when present. Return a JSON object with field "ideas": an
array of objects each having "title", "description", "targetMarket" and "alignmentReason".`,

	analysis.KindIndustryAnalysis: `Analyze the industry context for the business idea below.
Return a JSON object with fields "industryTrends" (array), "regulatoryFactors" (array) and
"growthOutlook".`,

	analysis.KindCompetitiveLandscape: `Map the competitive landscape for the business idea below.
Return a JSON object with fields "directCompetitors" (array), "indirectCompetitors" (array) and
"differentiators" (array).`,

	analysis.KindMarketValidation: `Validate the market assumptions of the business idea below.
Return a JSON object with fields "marketSize", "demandSignals" (array) and "risks" (array).`,

	analysis.KindVerificationSummary: `Combine the partial verification analyses below into an
overall evaluation. Return a JSON object with fields "overallScore" (0-100), "recommendation"
and "summary".`,
}

// buildPrompt assembles the full prompt for a kind: instruction block,
// then the input serialized as JSON.
func buildPrompt(kind string, input map[string]any) (string, error) {
	instructions, ok := promptInstructions[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if len(input) == 0 {
		return "", ErrEmptyInput
	}

	encoded, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis input: %w", err)
	}

	return fmt.Sprintf("%s\n\nRespond with JSON only, no prose.\n\nInput:\n%s",
		instructions, encoded), nil
}

package analysis

import (
	"context"
	"encoding/json"
)

// Analysis step kinds understood by the platform analyzers. Each kind maps
// to its own prompt on the provider side; the worker treats the call as an
// opaque JSON-in, JSON-out exchange.
const (
	KindCompanyResearch      = "company-research"
	KindMVVExtraction        = "mvv-extraction"
	KindBusinessAnalysis     = "business-analysis"
	KindIdeaGeneration       = "idea-generation"
	KindIndustryAnalysis     = "industry-analysis"
	KindCompetitiveLandscape = "competitive-landscape"
	KindMarketValidation     = "market-validation"
	KindVerificationSummary  = "verification-summary"
)

// Usage accounts for a single analysis call.
type Usage struct {
	Model        string  `json:"model"`
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	Cost         float64 `json:"cost"`
}

// Add accumulates another call's usage into this one. The model field
// keeps the most recent value.
func (u *Usage) Add(other Usage) {
	if other.Model != "" {
		u.Model = other.Model
	}
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.Cost += other.Cost
}

// Analyzer performs one AI analysis step. Implementations send the input
// to an external model and return the structured result.
type Analyzer interface {
	// Analyze runs the analysis of the given kind over input and returns
	// the model's JSON result together with usage accounting.
	Analyze(ctx context.Context, kind string, input map[string]any) (json.RawMessage, Usage, error)
}

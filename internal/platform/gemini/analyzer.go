package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/analysis"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/config"
	"google.golang.org/genai"
)

// Rough per-million-token pricing used for cost accounting. Accounting is
// informational; billing truth lives with the provider.
const (
	inputCostPerMillion  = 0.10
	outputCostPerMillion = 0.40
)

// Analyzer implements analysis.Analyzer using Google's Gemini API.
type Analyzer struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

// NewAnalyzer creates a Gemini-backed analyzer from the LLM configuration.
func NewAnalyzer(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Analyzer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", analysis.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", analysis.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", analysis.ErrInvalidConfig, err)
	}

	return &Analyzer{
		logger: logger.With("component", "gemini_analyzer"),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Analyze builds the prompt for the requested kind and calls the Gemini
// API with retry, returning the model's JSON result and usage accounting.
func (a *Analyzer) Analyze(ctx context.Context, kind string, input map[string]any) (json.RawMessage, analysis.Usage, error) {
	prompt, err := buildPrompt(kind, input)
	if err != nil {
		return nil, analysis.Usage{}, err
	}

	resp, err := a.callWithRetry(ctx, kind, prompt)
	if err != nil {
		return nil, analysis.Usage{}, err
	}

	text := strings.TrimSpace(resp.Text())
	// Models occasionally wrap JSON in a markdown fence despite the
	// response MIME type; strip it before parsing.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if !json.Valid([]byte(text)) {
		return nil, analysis.Usage{}, fmt.Errorf("%w: response is not valid JSON", analysis.ErrInvalidResponse)
	}

	usage := analysis.Usage{Model: a.model}
	if resp.UsageMetadata != nil {
		usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.Cost = float64(usage.InputTokens)*inputCostPerMillion/1e6 +
			float64(usage.OutputTokens)*outputCostPerMillion/1e6
	}

	return json.RawMessage(text), usage, nil
}

// callWithRetry calls the Gemini API up to MaxRetries+1 times with
// exponential backoff and jitter between attempts. Permanent errors
// (blocked content, empty candidates) are returned without retrying.
func (a *Analyzer) callWithRetry(ctx context.Context, kind, prompt string) (*genai.GenerateContentResponse, error) {
	maxRetries := a.config.MaxRetries
	if maxRetries < 0 {
		a.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	baseDelaySeconds := a.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		a.logger.DebugContext(ctx, "calling Gemini API",
			"kind", kind,
			"attempt", attempt+1,
			"max_attempts", maxRetries+1)

		resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), genConfig)

		switch {
		case err != nil:
			// API-level failures are assumed transient.
			lastErr = fmt.Errorf("%w: %v", analysis.ErrTransientFailure, err)
			a.logger.WarnContext(ctx, "Gemini API call failed",
				"kind", kind, "attempt", attempt+1, "error", err)

		case resp == nil || len(resp.Candidates) == 0:
			return nil, fmt.Errorf("%w: no content generated", analysis.ErrInvalidResponse)

		case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
			return nil, analysis.ErrContentBlocked

		default:
			return resp, nil
		}

		if attempt < maxRetries {
			delay := backoffDelay(baseDelaySeconds, attempt, rng)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("%w: all %d attempts failed: %v",
		analysis.ErrAnalysisFailed, maxRetries+1, lastErr)
}

// backoffDelay computes an exponential delay with up to 25% jitter.
func backoffDelay(baseSeconds, attempt int, rng *rand.Rand) time.Duration {
	base := float64(baseSeconds) * math.Pow(2, float64(attempt))
	jitter := base * 0.25 * rng.Float64()
	return time.Duration((base + jitter) * float64(time.Second))
}

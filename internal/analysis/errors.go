package analysis

import "errors"

// Common errors returned by analyzers.
var (
	// ErrAnalysisFailed is returned when an analysis fails for any general reason.
	ErrAnalysisFailed = errors.New("failed to run analysis")

	// ErrInvalidResponse is returned when the model response cannot be parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry.
	ErrTransientFailure = errors.New("transient error during analysis")

	// ErrInvalidConfig is returned when the analyzer configuration is invalid.
	ErrInvalidConfig = errors.New("invalid analyzer configuration")

	// ErrDisabled is returned by the disabled analyzer when no LLM
	// provider is configured.
	ErrDisabled = errors.New("analysis disabled: no LLM API key configured")
)

package gemini

import "errors"

// Errors specific to the Gemini analyzer.
var (
	// ErrUnknownKind is returned when no prompt exists for the requested
	// analysis kind.
	ErrUnknownKind = errors.New("unknown analysis kind")

	// ErrEmptyInput is returned when an analysis is requested with no input.
	ErrEmptyInput = errors.New("analysis input cannot be empty")
)

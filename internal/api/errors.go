package api

import (
	"errors"
	"net/http"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/blob"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, task.ErrUnknownType),
		errors.Is(err, task.ErrInvalidID):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, blob.ErrNotFound),
		errors.Is(err, task.ErrUnknownTask):
		return http.StatusNotFound

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, task.ErrUnknownType):
		return err.Error() // Already lists the supported types.

	case errors.Is(err, task.ErrInvalidID):
		return "Invalid task ID"

	case errors.Is(err, blob.ErrNotFound),
		errors.Is(err, task.ErrUnknownTask):
		return "Task not found"

	default:
		return "An unexpected error occurred"
	}
}

package task

import (
	"errors"
	"fmt"
	"time"
)

// Age thresholds for inferred task state. A task with no persisted record
// younger than ProcessingThreshold is assumed to still be running; one
// older than TimeoutThreshold is assumed lost. Client polling behavior
// depends on these exact values.
const (
	ProcessingThreshold = 30 * time.Second
	TimeoutThreshold    = 5 * time.Minute
)

// ErrUnknownTask is returned when a task's state can be neither looked up
// nor inferred.
var ErrUnknownTask = errors.New("task state unknown")

// InferStatus derives a synthetic status view for a task that has no
// persisted result record, using the creation timestamp embedded in the
// task ID. The inference is a heuristic, not authoritative:
//
//   - age < ProcessingThreshold: still processing, keep polling
//   - age > TimeoutThreshold: presumed lost, report retryable timeout
//   - anything else (including unparseable IDs): ErrUnknownTask
func InferStatus(id string, now time.Time) (*StatusView, error) {
	age, err := Age(id, now)
	if err != nil {
		return nil, ErrUnknownTask
	}

	switch {
	case age < ProcessingThreshold:
		remaining := ProcessingThreshold - age
		percentage := int(age * 90 / ProcessingThreshold)
		return &StatusView{
			TaskID: id,
			Status: StatusProcessing,
			Progress: &ProgressRecord{
				Percentage:  percentage,
				CurrentStep: "processing",
			},
			EstimatedRemainingMS: remaining.Milliseconds(),
			ContinuePoll:         true,
		}, nil

	case age > TimeoutThreshold:
		return &StatusView{
			TaskID: id,
			Status: StatusFailed,
			Error: &StatusError{
				Message:   fmt.Sprintf("task timed out after %s without reporting a result", age.Round(time.Second)),
				Retryable: true,
			},
			ContinuePoll: false,
		}, nil

	default:
		// Between the two thresholds the task's fate is indeterminate:
		// no record was written, yet it is too old to assume progress.
		return nil, ErrUnknownTask
	}
}

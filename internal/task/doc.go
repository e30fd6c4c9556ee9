// Package task defines the domain model for asynchronous analysis tasks:
// the task type registry, the timestamped task ID scheme, the persisted
// result and progress records, and the heuristic status inference used
// when no persisted record exists yet.
package task

package task

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// IDPrefix is the leading marker on every generated task ID.
const idMarker = "async"

// NewID generates a task ID of the form
// async_<unixMillis>_<typePrefix>_<randomBase36>. The embedded timestamp
// lets the poller derive task age when no persisted record exists yet.
func NewID(t Type, now time.Time) string {
	def := definitions[t]
	prefix := def.IDPrefix
	if prefix == "" {
		prefix = "task"
	}

	// Base36 keeps the random suffix short and URL-safe.
	suffix := strconv.FormatInt(rand.Int63(), 36)
	return fmt.Sprintf("%s_%d_%s_%s", idMarker, now.UnixMilli(), prefix, suffix)
}

// ParseID extracts the creation time embedded in a task ID. Returns
// ErrInvalidID when the ID does not follow the generated format or the
// timestamp segment is not a parseable integer.
func ParseID(id string) (time.Time, error) {
	parts := strings.Split(id, "_")
	if len(parts) < 4 || parts[0] != idMarker {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	millis, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp segment %q: %v", ErrInvalidID, parts[1], err)
	}
	if millis <= 0 {
		return time.Time{}, fmt.Errorf("%w: non-positive timestamp in %q", ErrInvalidID, id)
	}

	return time.UnixMilli(millis), nil
}

// Age returns how long ago the task ID was created relative to now.
func Age(id string, now time.Time) (time.Duration, error) {
	created, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	return now.Sub(created), nil
}

// ProgressKey returns the blob key holding a task's progress record,
// stored separately from the result record.
func ProgressKey(id string) string {
	return id + "_progress"
}

package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDFormat(t *testing.T) {
	now := time.Now()
	id := NewID(TypeExtractMVV, now)

	parts := strings.Split(id, "_")
	require.Len(t, parts, 4)
	assert.Equal(t, "async", parts[0])
	assert.Equal(t, "mvv", parts[2])
	assert.NotEmpty(t, parts[3])
}

func TestNewIDEmbedsCurrentTimestamp(t *testing.T) {
	now := time.Now()
	id := NewID(TypeGenerateIdeas, now)

	created, err := ParseID(id)
	require.NoError(t, err)

	// The embedded timestamp must be within a few seconds of the clock
	// at generation time.
	assert.WithinDuration(t, now, created, 2*time.Second)
}

func TestNewIDUniqueness(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID(TypeVerifyIdea, now)
		assert.False(t, seen[id], "duplicate ID generated: %s", id)
		seen[id] = true
	}
}

func TestParseIDRejectsMalformedIDs(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"no marker", "task_1700000000000_mvv_abc"},
		{"too few segments", "async_1700000000000_mvv"},
		{"non-numeric timestamp", "async_notanumber_mvv_abc"},
		{"negative timestamp", "async_-5_mvv_abc"},
		{"random string", "completely-unrelated"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseID(tc.id)
			assert.ErrorIs(t, err, ErrInvalidID)
		})
	}
}

func TestAge(t *testing.T) {
	created := time.Now().Add(-42 * time.Second)
	id := NewID(TypeExtractMVV, created)

	age, err := Age(id, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 42, age.Seconds(), 1.0)
}

func TestProgressKey(t *testing.T) {
	assert.Equal(t, "async_1_mvv_x_progress", ProgressKey("async_1_mvv_x"))
}

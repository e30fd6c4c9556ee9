package task

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Common errors returned by the task package.
var (
	ErrUnknownType = errors.New("unknown task type")
	ErrInvalidID   = errors.New("invalid task ID")
)

// Type identifies a supported analysis task kind.
type Type string

// Supported task types.
const (
	TypeExtractMVV    Type = "extract-mvv"
	TypeGenerateIdeas Type = "generate-ideas"
	TypeVerifyIdea    Type = "verify-idea"
)

// Definition describes how a task type is routed and estimated.
type Definition struct {
	// Route is the worker endpoint segment the gateway dispatches to.
	Route string

	// IDPrefix is the short type marker embedded in generated task IDs.
	IDPrefix string

	// RequiredFields lists taskData fields the type's worker expects.
	// Missing fields are reported to the caller but do not block
	// submission; the worker applies its own fallbacks.
	RequiredFields []string

	// BaseEstimate is the default expected duration before per-request
	// adjustments.
	BaseEstimate time.Duration
}

var definitions = map[Type]Definition{
	TypeExtractMVV: {
		Route:          "analyze-mvv",
		IDPrefix:       "mvv",
		RequiredFields: []string{"companyId", "companyName"},
		BaseEstimate:   30 * time.Second,
	},
	TypeGenerateIdeas: {
		Route:          "generate-business-ideas",
		IDPrefix:       "ideas",
		RequiredFields: []string{"companyData"},
		BaseEstimate:   45 * time.Second,
	},
	TypeVerifyIdea: {
		Route:          "verify-business-idea",
		IDPrefix:       "verify",
		RequiredFields: []string{"originalIdea"},
		BaseEstimate:   60 * time.Second,
	},
}

// Lookup returns the definition for the given task type, or ErrUnknownType
// if the type is not in the supported set.
func Lookup(t Type) (Definition, error) {
	def, ok := definitions[t]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnknownType, t, strings.Join(SupportedTypes(), ", "))
	}
	return def, nil
}

// SupportedTypes returns the fixed set of supported task types, sorted for
// stable error messages.
func SupportedTypes() []string {
	types := make([]string, 0, len(definitions))
	for t := range definitions {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types
}

// EstimateDuration computes the expected duration for a submission,
// applying the per-type adjustments from the request payload.
func EstimateDuration(t Type, taskData map[string]any) time.Duration {
	def, ok := definitions[t]
	if !ok {
		return 0
	}

	switch t {
	case TypeGenerateIdeas:
		// Idea generation scales roughly logarithmically with the number
		// of requested ideas.
		count := numberField(taskData, "ideaCount")
		if count < 1 {
			count = 3
		}
		scale := math.Log2(count + 1)
		return time.Duration(float64(def.BaseEstimate) * scale / 2)

	case TypeVerifyIdea:
		// Verification switches between fixed buckets by level.
		switch stringField(taskData, "verificationLevel") {
		case "basic":
			return 30 * time.Second
		case "expert":
			return 120 * time.Second
		default:
			// "comprehensive" and anything unrecognized.
			return 60 * time.Second
		}

	default:
		return def.BaseEstimate
	}
}

// MissingFields reports which of the type's required taskData fields are
// absent. Submission proceeds regardless; workers substitute fallbacks.
func MissingFields(t Type, taskData map[string]any) []string {
	def, ok := definitions[t]
	if !ok {
		return nil
	}

	var missing []string
	for _, field := range def.RequiredFields {
		if _, present := taskData[field]; !present {
			missing = append(missing, field)
		}
	}
	return missing
}

func numberField(data map[string]any, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

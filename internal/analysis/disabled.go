package analysis

import (
	"context"
	"encoding/json"
	"fmt"
)

// Disabled is an Analyzer for deployments without an LLM API key. The
// server starts and serves every endpoint normally; tasks reach the
// worker and fail there with a clear error instead of the process
// refusing to boot.
type Disabled struct{}

// Analyze always fails with ErrDisabled.
func (Disabled) Analyze(ctx context.Context, kind string, input map[string]any) (json.RawMessage, Usage, error) {
	return nil, Usage{}, fmt.Errorf("%w (kind %s)", ErrDisabled, kind)
}

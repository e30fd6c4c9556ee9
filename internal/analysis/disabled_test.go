package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledAnalyzerAlwaysFails(t *testing.T) {
	var analyzer Analyzer = Disabled{}

	result, usage, err := analyzer.Analyze(context.Background(), KindCompanyResearch,
		map[string]any{"companyName": "Acme"})

	assert.ErrorIs(t, err, ErrDisabled)
	assert.Contains(t, err.Error(), KindCompanyResearch)
	assert.Nil(t, result)
	assert.Zero(t, usage)
}

package logger

import (
	"testing"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupReturnsLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"mixed case", "DeBuG"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tc.logLevel})
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestSetupFallsBackOnInvalidLevel(t *testing.T) {
	logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: "chatty"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

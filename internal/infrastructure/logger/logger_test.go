package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew_ReturnsLogger(t *testing.T) {
	logger, err := New(DefaultConfig())

	assert.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNew_JSONFormat(t *testing.T) {
	cfg := ProductionConfig()
	cfg.Level = "debug"

	logger, err := New(cfg)

	assert.NoError(t, err)
	assert.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewForEnvironment(t *testing.T) {
	prod, err := NewForEnvironment("production")
	assert.NoError(t, err)
	assert.NotNil(t, prod)

	dev, err := NewForEnvironment("development")
	assert.NoError(t, err)
	assert.NotNil(t, dev)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"WARN", zapcore.WarnLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

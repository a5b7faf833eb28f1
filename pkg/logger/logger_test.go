package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantLevel zapcore.Level
	}{
		{"debug console", config.LogConfig{Level: "DEBUG", Encoding: "console"}, zapcore.DebugLevel},
		{"json warn", config.LogConfig{Level: "warn", Encoding: "json"}, zapcore.WarnLevel},
		{"unknown level and encoding", config.LogConfig{Level: "loud", Encoding: "xml"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.wantLevel))
			assert.False(t, l.Core().Enabled(tt.wantLevel-1))
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l, err := New(config.LogConfig{Level: "info"})
	require.NoError(t, err)
	assert.Same(t, l, OrNop(l))
}

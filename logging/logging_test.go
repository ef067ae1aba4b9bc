package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"", zap.InfoLevel, zap.DebugLevel},
		{"debug", zap.DebugLevel, zap.DebugLevel - 1},
		{"warn", zap.WarnLevel, zap.InfoLevel},
		{"ERROR", zap.ErrorLevel, zap.WarnLevel},
	}
	for _, c := range cases {
		t.Run("level_"+c.level, func(t *testing.T) {
			log, err := New(c.level)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(c.enabled))
			assert.False(t, log.Core().Enabled(c.muted))
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	log, err := New("chatty")
	assert.Error(t, err)
	assert.Nil(t, log)
}

package zap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"webclipper-api/pkg/config"
)

func TestLogger_WritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core)

	logger.Info("Item collected", map[string]interface{}{"domain": "example.com", "total": 2})
	logger.Debug("no fields", nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "Item collected", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"domain": "example.com", "total": int64(2)}, entries[0].ContextMap())
	assert.Empty(t, entries[1].Context)
}

func TestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := NewWithCore(core)

	logger.Debug("d", nil)
	logger.Info("i", nil)
	logger.Warn("w", nil)
	logger.Error("e", nil)

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestNew(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)

	logger, err := New(config.LogConfig{Level: "info", Format: "text"})
	require.NoError(t, err)
	assert.NoError(t, logger.Close())
}

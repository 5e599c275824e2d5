package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webclipper-api/infrastructure/logger/standard"
	"webclipper-api/infrastructure/logger/zap"
	"webclipper-api/pkg/config"
)

func TestNew_SelectsBackend(t *testing.T) {
	l, err := New(config.LogConfig{Level: "info", Backend: "logrus"})
	require.NoError(t, err)
	assert.IsType(t, &standard.StandardLogger{}, l)

	l, err = New(config.LogConfig{Level: "info", Backend: "zap"})
	require.NoError(t, err)
	assert.IsType(t, &zap.Logger{}, l)

	_, err = New(config.LogConfig{Level: "info", Backend: "syslog"})
	assert.Error(t, err)
}

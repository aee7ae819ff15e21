package observability

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaultsToInfo(t *testing.T) {
	logger := NewLogger(LogConfig{Level: "chatty"})
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
}

func TestNewLoggerJSONWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.log")
	logger := NewLogger(LogConfig{Level: "debug", Format: "json", File: path})
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	require.True(t, ok)

	logger.Info("hello")
	require.FileExists(t, path)
}

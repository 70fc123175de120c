package utils

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "billing.log")

	logger, err := NewLogger(LoggerConfig{Level: "debug", OutputPath: path, Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.FileExists(t, path)
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{Level: "loud", OutputPath: "stdout", Format: "console"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestKeyValueLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	kv := NewKeyValueLogger(zap.New(core))

	kv.Info("export finished", "company_key", "acme", "rows", 3, 42, "dropped")
	kv.Error("export failed", "error", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, "acme", fields["company_key"])
	assert.EqualValues(t, 3, fields["rows"])
	assert.Len(t, fields, 2)

	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestNewKeyValueLogger_NilLogger(t *testing.T) {
	kv := NewKeyValueLogger(nil)
	assert.NotPanics(t, func() { kv.Warn("nothing to see") })
}

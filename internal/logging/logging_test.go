package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsontab/internal/config"
)

func restoreDefault(t *testing.T) {
	t.Helper()
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelWarn,
		"verbose": slog.LevelWarn,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSetup_Stderr(t *testing.T) {
	restoreDefault(t)

	var buf bytes.Buffer
	cfg := config.NewConfig()
	cleanup, err := setup(cfg, &buf)
	require.NoError(t, err)
	defer func() { assert.NoError(t, cleanup()) }()

	slog.Info("hidden")
	slog.Warn("shown", "rows", 2)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown rows=2")
}

func TestSetup_DebugOverridesLevel(t *testing.T) {
	restoreDefault(t)

	cfg := config.NewConfig()
	cfg.Dev.Debug = true
	cfg.Dev.LogLevel = "error"

	var buf bytes.Buffer
	_, err := setup(cfg, &buf)
	require.NoError(t, err)

	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestSetup_LogFile(t *testing.T) {
	restoreDefault(t)

	path := filepath.Join(t.TempDir(), "logs", "jsontab.log")
	cfg := config.NewConfig()
	cfg.Dev.LogFile = path
	cfg.Dev.LogLevel = "info"

	cleanup, err := Setup(cfg)
	require.NoError(t, err)

	slog.Info("flattened", "rows", 3)
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=flattened rows=3")
}

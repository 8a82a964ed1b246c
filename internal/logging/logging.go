// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mcncl/jsontab/internal/config"
)

// Rotation settings for --log-file.
const (
	MaxSizeMB  = 10
	MaxBackups = 3
	MaxAgeDays = 28
)

// Setup installs a text handler as the default slog logger, writing to the
// configured log file or to stderr. The returned function closes the file.
func Setup(cfg *config.Config) (func() error, error) {
	return setup(cfg, os.Stderr)
}

func setup(cfg *config.Config, stderr io.Writer) (func() error, error) {
	level := ParseLevel(cfg.Dev.LogLevel)
	if cfg.Dev.Debug {
		level = slog.LevelDebug
	}

	writer := stderr
	cleanup := func() error { return nil }

	if cfg.Dev.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Dev.LogFile), 0o755); err != nil {
			return nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.Dev.LogFile,
			MaxSize:    MaxSizeMB,
			MaxBackups: MaxBackups,
			MaxAge:     MaxAgeDays,
			LocalTime:  true,
		}
		writer = lj
		cleanup = lj.Close
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// ParseLevel maps a level name to a slog level. Unknown names mean warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

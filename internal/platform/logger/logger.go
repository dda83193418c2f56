package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/taskdeck-api/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for the log file.
const (
	maxFileSizeMB  = 100
	maxFileBackups = 5
	maxFileAgeDays = 30
)

// nopCloser is returned when nothing needs closing.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds the application's JSON logger from cfg and installs it as
// the slog default. Output goes to stdout, to a size-rotated file, or to
// both. The returned Closer releases the log file and must be closed on
// shutdown.
func Setup(cfg config.ServerConfig) (*slog.Logger, io.Closer, error) {
	level, ok := ParseLevel(cfg.LogLevel)
	if !ok {
		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	w, closer, err := outputWriter(cfg, os.Stdout)
	if err != nil {
		return nil, nil, err
	}

	logger := New(w, level)
	slog.SetDefault(logger)
	return logger, closer, nil
}

// New returns a JSON logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a configured level name to a slog.Level, case-insensitively.
// Unknown names yield slog.LevelInfo and false.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func outputWriter(cfg config.ServerConfig, stdout io.Writer) (io.Writer, io.Closer, error) {
	output := strings.ToLower(cfg.LogOutput)
	if output == "" || output == "stdout" {
		return stdout, nopCloser{}, nil
	}
	if output != "file" && output != "both" {
		return nil, nil, fmt.Errorf("unsupported log output %q", cfg.LogOutput)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    maxFileSizeMB,
		MaxBackups: maxFileBackups,
		MaxAge:     maxFileAgeDays,
		Compress:   true,
	}

	if output == "both" {
		return io.MultiWriter(stdout, file), file, nil
	}
	return file, file, nil
}

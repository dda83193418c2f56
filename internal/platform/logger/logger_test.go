package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/taskdeck-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		want  slog.Level
		known bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range testCases {
		level, ok := ParseLevel(tc.name)
		assert.Equal(t, tc.want, level, tc.name)
		assert.Equal(t, tc.known, ok, tc.name)
	}
}

func TestNewWritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo)
	l.Debug("hidden")
	l.Info("task completed", slog.String("task_id", "abc"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "task completed", entry["msg"])
	assert.Equal(t, "abc", entry["task_id"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestOutputWriter(t *testing.T) {
	t.Parallel()

	t.Run("stdout", func(t *testing.T) {
		var stdout bytes.Buffer
		w, closer, err := outputWriter(config.ServerConfig{LogOutput: "stdout"}, &stdout)
		require.NoError(t, err)
		_, _ = w.Write([]byte("line\n"))
		assert.Equal(t, "line\n", stdout.String())
		assert.NoError(t, closer.Close())
	})

	t.Run("both writes to stdout and the rotated file", func(t *testing.T) {
		var stdout bytes.Buffer
		path := filepath.Join(t.TempDir(), "logs", "taskdeck.log")
		w, closer, err := outputWriter(config.ServerConfig{LogOutput: "both", LogFile: path}, &stdout)
		require.NoError(t, err)

		New(w, slog.LevelInfo).Info("hello")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"hello"`)
		assert.Contains(t, stdout.String(), `"msg":"hello"`)
	})

	t.Run("unknown output", func(t *testing.T) {
		_, _, err := outputWriter(config.ServerConfig{LogOutput: "syslog"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	reqLogger := New(&buf, slog.LevelDebug).With(slog.String("trace_id", "t-1"))
	fallback := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	ctx := WithLogger(context.Background(), reqLogger)
	assert.Same(t, reqLogger, FromContext(ctx))
	assert.Same(t, reqLogger, FromContextOrDefault(ctx, fallback))

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
	assert.NotNil(t, FromContext(context.Background()))
}

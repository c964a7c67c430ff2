package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}

// captureDefault swaps the default logger for one writing JSON to a buffer.
func captureDefault(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, level, "json"))
	return &buf
}

func TestSetupLogger(t *testing.T) {
	buf := captureDefault(t, slog.LevelWarn)

	slog.Info("hidden")
	slog.Warn("shown", "batch", "b1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "b1", entry["batch"])

	assert.Error(t, SetupLogger(&bytes.Buffer{}, slog.LevelInfo, "xml"))
}

func TestLoggerFromContext(t *testing.T) {
	assert.Equal(t, slog.Default(), Logger(context.Background()))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil)).With("command", "reconcile")
	ctx := WithLogger(context.Background(), logger)

	Logger(ctx).Info("hello")
	assert.Contains(t, buf.String(), `"command":"reconcile"`)
}

func TestLogHelpers(t *testing.T) {
	buf := captureDefault(t, slog.LevelDebug)

	LogError(errors.New("disk full"), "save failed", Fields{"batch": "b1"})
	LogInfo("saved", Fields{"records": 3})
	LogDebug("detail", nil)

	out := buf.String()
	assert.Contains(t, out, `"error":"disk full"`)
	assert.Contains(t, out, `"batch":"b1"`)
	assert.Contains(t, out, `"records":3`)
	assert.Contains(t, out, `"msg":"detail"`)
}

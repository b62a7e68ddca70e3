package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/Cyclone1070/commander/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesTextAtConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer

	logger, level, err := New(config.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "tier", "reasoning")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "tier=reasoning")
	assert.Equal(t, slog.LevelWarn, level.Level())

	level.Set(slog.LevelInfo)
	logger.Info("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestNew_UnknownLevel(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "chatty"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToJournalKey(t *testing.T) {
	assert.Equal(t, "TOOL_CALL_ID", toJournalKey("tool.call-id"))
	assert.Equal(t, "SPENT", toJournalKey("spent"))
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	l := slog.Default()
	assert.Same(t, l, OrDiscard(l))
}

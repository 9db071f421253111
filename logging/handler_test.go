package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup("overworld", "json", "debug", &buf)
	require.NoError(t, err)

	logger.With("map", "village").Debug("tile event fired", "kind", "jump")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tile event fired", entry["msg"])
	assert.Equal(t, "overworld", entry["game"])
	assert.Equal(t, "village", entry["map"])
	assert.Equal(t, "jump", entry["kind"])
}

func TestSetupTextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup("overworld", "text", "warn", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.WithGroup("physics").Warn("physics already paused")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "physics.game=overworld")
}

func TestSetupRejectsBadInput(t *testing.T) {
	_, err := Setup("overworld", "xml", "info", nil)
	assert.ErrorIs(t, err, ErrBadFormat)

	_, err = Setup("overworld", "text", "loud", nil)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelInfo, WithWriter(&buf))

	logger.Info("engine lost", "error", errors.New("broken pipe"))

	assert.Contains(t, buf.String(), `err="broken pipe"`)
	assert.NotContains(t, buf.String(), "error=")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelDebug, WithWriter(&buf), WithJSON(true))

	logger.Debug("engine <<", "line", "isready")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "isready", entry["line"])
	assert.Equal(t, "DEBUG", entry["level"])
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelWarn, WithWriter(&buf))

	logger.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

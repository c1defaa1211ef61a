package diag

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCapturesAttrs(t *testing.T) {
	rec := NewRecorder()
	logger := rec.Logger().With(KeyNetwork, "net-1")

	logger.Warn("tried to seal an empty layer", KeyLayer, 2)
	logger.Error("layer out of range", KeyLayer, 9)

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, slog.LevelWarn, entries[0].Level)
	assert.Equal(t, "net-1", entries[0].Attrs[KeyNetwork])
	assert.EqualValues(t, 2, entries[0].Attrs[KeyLayer])
	assert.Equal(t, 1, rec.Count(slog.LevelError, "layer out of range"))

	rec.Reset()
	assert.Empty(t, rec.Entries())
}

func TestDiscardDropsEverything(t *testing.T) {
	logger := Discard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
	assert.Same(t, logger, OrDiscard(nil))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, custom, OrDiscard(custom))
}

func TestNewLoggerFormats(t *testing.T) {
	var jsonOut bytes.Buffer
	NewLogger(&jsonOut, FormatJSON, slog.LevelWarn).Warn("json message", KeyCount, 3)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &decoded))
	assert.Equal(t, "json message", decoded["msg"])

	var textOut bytes.Buffer
	logger := NewLogger(&textOut, FormatText, slog.LevelWarn)
	logger.Info("filtered")
	logger.Warn("text message")
	assert.False(t, strings.Contains(textOut.String(), "filtered"))
	assert.True(t, strings.Contains(textOut.String(), "text message"))
}

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestWith_AttachesAttributes(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithHandler(context.Background(), slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx = With(ctx, "rule", "AMI_EBS_ENCRYPTED")

	Info(ctx, "evaluated", "count", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "evaluated", rec["msg"])
	assert.Equal(t, "AMI_EBS_ENCRYPTED", rec["rule"])
	assert.EqualValues(t, 3, rec["count"])
}

func TestDebug_FilteredByLevel(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithHandler(context.Background(), slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	Debug(ctx, "hidden")
	assert.Zero(t, buf.Len(), "debug record must be dropped at info level")

	Warn(ctx, "shown")
	assert.Contains(t, buf.String(), "shown")
}

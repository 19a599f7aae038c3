package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMultiHandlerFansOut(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	logger.Info("hello", "school_code", "ABC")
	logger.With("request_id", "r1").Error("broken")

	assert.Equal(t, 2, strings.Count(infoBuf.String(), "\n"))
	assert.Equal(t, 1, strings.Count(errBuf.String(), "\n"))
	assert.Contains(t, errBuf.String(), `"request_id":"r1"`)
}

func TestToSystemLog(t *testing.T) {
	record := slog.NewRecord(time.Now(), slog.LevelError, "login failed", 0)
	record.AddAttrs(
		slog.String("user_id", "u-1"),
		slog.String("action", "login"),
		slog.Float64("latency_ms", 12.6),
		slog.String("role", "teacher"),
	)

	entry := toSystemLog(record, []slog.Attr{slog.String("school_code", "ABC")})
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "login failed", entry.Message)
	assert.Equal(t, "ABC", entry.SchoolCode)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "login", entry.Action)
	assert.Equal(t, 13, entry.LatencyMs)
	assert.JSONEq(t, `{"role":"teacher"}`, string(entry.Extra))
}

func TestDBHandlerOnlyBuffersErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := NewDBHandler(nil, time.Hour)
	ctx := context.Background()
	assert.False(t, h.Enabled(ctx, slog.LevelWarn))
	assert.True(t, h.Enabled(ctx, slog.LevelError))

	// nothing buffered, so Stop never reaches the nil db
	h.Stop()
	h.Stop()
	assert.Equal(t, 0, h.Pending())
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

var fixedClock = func() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	assert.Same(t, logger, logger.With(ports.F("k", "v")))
	assert.Equal(t, ports.LevelInfo, logger.Level())
	logger.SetLevel(ports.LevelDebug)
	assert.Equal(t, ports.LevelDebug, logger.Level())
}

func TestConsoleLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithClock(fixedClock))

	logger.Info(context.Background(), "executing step", ports.F("step", "lint"), ports.F("index", 2))

	assert.Equal(t, "09:26:53 [INFO] executing step step=lint index=2\n", buf.String())
}

func TestConsoleLogger_TextQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false), WithLevelLabel(false))

	logger.Warn(context.Background(), "persist failed", ports.F("error", errors.New("disk full")))

	assert.Equal(t, "persist failed error=\"disk full\"\n", buf.String())
}

func TestConsoleLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithJSONFormat(true), WithClock(fixedClock))

	logger.Error(context.Background(), "step cannot execute", ports.F("index", 1), ports.F("error", errors.New("boom")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "step cannot execute", entry["msg"])
	assert.Equal(t, "2026-03-14T09:26:53Z", entry["time"])
	assert.Equal(t, float64(1), entry["index"])
	assert.Equal(t, "boom", entry["error"])
}

func TestConsoleLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithLevel(ports.LevelWarn), WithTimestamp(false))
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	assert.Empty(t, buf.String())

	logger.Warn(ctx, "warn")
	assert.Contains(t, buf.String(), "[WARN] warn")

	logger.SetLevel(ports.LevelDebug)
	assert.Equal(t, ports.LevelDebug, logger.Level())
	logger.Debug(ctx, "debug")
	assert.Contains(t, buf.String(), "[DEBUG] debug")
}

func TestConsoleLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false), WithLevelLabel(false))
	run := base.With(ports.F("run_id", "r1"))

	run.Info(context.Background(), "started", ports.F("steps", 3))
	base.Info(context.Background(), "plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "started run_id=r1 steps=3", lines[0])
	assert.Equal(t, "plain", lines[1])
}

func TestConsoleLogger_Color(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false), WithColor(true))

	logger.Info(context.Background(), "hello")

	assert.Contains(t, buf.String(), "[INFO]")
	assert.Contains(t, buf.String(), "hello")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New("debug", true, &buf)
	require.NoError(t, err)
	assert.Equal(t, ports.LevelDebug, logger.Level())

	logger, err = New("loud", false, &buf)
	require.Error(t, err)
	assert.Equal(t, ports.LevelInfo, logger.Level())
}

package zaphandler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/philipp01105/asynclog/core"
)

func TestHandler_HandleLog(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	h := New(obs)

	now := time.Now()
	rec := core.Record{
		Time:         now,
		Level:        core.WarnLevel,
		LoggerName:   "billing",
		ThreadName:   "worker-2",
		Message:      "retrying",
		LoggerFields: []core.Field{{Key: "service", Type: core.StringType, Str: "api"}},
		CallFields: []core.Field{
			{Key: "attempt", Type: core.Int64Type, Int64: 3},
			{Key: "ok", Type: core.BoolType, Int64: 0},
		},
		ContextData: []core.Field{{Key: "request_id", Type: core.StringType, Str: "r-1"}},
	}
	require.NoError(t, h.HandleLog(&rec))

	require.Equal(t, 1, logs.Len())
	got := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, got.Level)
	assert.Equal(t, "retrying", got.Message)
	assert.Equal(t, "billing", got.LoggerName)
	assert.True(t, got.Time.Equal(now))

	ctx := got.ContextMap()
	assert.Equal(t, "api", ctx["service"])
	assert.Equal(t, int64(3), ctx["attempt"])
	assert.Equal(t, false, ctx["ok"])
	assert.Equal(t, "worker-2", ctx["thread"])
	assert.Equal(t, map[string]interface{}{"request_id": "r-1"}, ctx[ContextKey])

	assert.Equal(t, uint64(1), h.Stats().ProcessedTotal)
}

func TestHandler_LevelFiltering(t *testing.T) {
	obs, logs := observer.New(zapcore.WarnLevel)
	h := New(obs)

	entry := core.GetEntry()
	defer core.PutEntry(entry)
	entry.Level = core.DebugLevel
	entry.Message = "ignored"
	require.NoError(t, h.Handle(entry))
	assert.Zero(t, logs.Len())
	assert.Zero(t, h.Stats().ProcessedTotal)
}

func TestHandler_FatalDoesNotExit(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	h := FromLogger(zap.New(obs))

	rec := core.Record{Level: core.FatalLevel, Message: "boom"}
	require.NoError(t, h.HandleLog(&rec))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.DPanicLevel, logs.All()[0].Level)
	require.NoError(t, h.Flush())
	require.NoError(t, h.Close())
}

func TestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, Level(core.DebugLevel))
	assert.Equal(t, zapcore.InfoLevel, Level(core.InfoLevel))
	assert.Equal(t, zapcore.WarnLevel, Level(core.WarnLevel))
	assert.Equal(t, zapcore.ErrorLevel, Level(core.ErrorLevel))
	assert.Equal(t, zapcore.DPanicLevel, Level(core.PanicLevel))
}

package zaphandler

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/handler"
)

// ContextKey is the zap field namespace under which ambient context data
// is written.
const ContextKey = "context"

// Handler forwards entries into a zapcore.Core. Fatal and Panic entries are
// written at zap's DPanic level so that the core never exits or panics on
// the consumer goroutine.
type Handler struct {
	core  zapcore.Core
	stats *handler.Stats
	buf   []zapcore.Field
}

// New returns a Handler writing to c.
func New(c zapcore.Core) *Handler {
	return &Handler{
		core:  c,
		stats: handler.NewStats(),
		buf:   make([]zapcore.Field, 0, 16),
	}
}

// FromLogger returns a Handler writing to the core behind l.
func FromLogger(l *zap.Logger) *Handler {
	return New(l.Core())
}

// Level maps a log level to the zap level used for it.
func Level(l core.Level) zapcore.Level {
	switch l {
	case core.DebugLevel:
		return zapcore.DebugLevel
	case core.InfoLevel:
		return zapcore.InfoLevel
	case core.WarnLevel:
		return zapcore.WarnLevel
	case core.ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.DPanicLevel
	}
}

// Field converts a field to its zap equivalent.
func Field(f core.Field) zapcore.Field {
	switch f.Type {
	case core.StringType:
		return zap.String(f.Key, f.Str)
	case core.IntType, core.Int64Type:
		return zap.Int64(f.Key, f.Int64)
	case core.Float64Type:
		return zap.Float64(f.Key, f.Float64)
	case core.BoolType:
		return zap.Bool(f.Key, f.Int64 == 1)
	case core.TimeType:
		return zap.Time(f.Key, time.Unix(0, f.Int64))
	case core.DurationType:
		return zap.Duration(f.Key, time.Duration(f.Int64))
	case core.ErrorType:
		return zap.String(f.Key, f.Str)
	default:
		return zap.Any(f.Key, f.Any)
	}
}

// contextObject renders ambient context data as a nested zap object.
type contextObject []core.Field

func (c contextObject) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, f := range c {
		Field(f).AddTo(enc)
	}
	return nil
}

// Handle writes entry to the zap core.
func (h *Handler) Handle(entry *core.Entry) error {
	var rec core.Record
	rec.FromEntry(entry)
	return h.HandleLog(&rec)
}

// HandleLog writes the record to the zap core. It must not be called
// concurrently; the async consumer calls it from a single goroutine.
func (h *Handler) HandleLog(rec *core.Record) error {
	lvl := Level(rec.Level)
	if !h.core.Enabled(lvl) {
		return nil
	}

	ent := zapcore.Entry{
		Level:      lvl,
		Time:       rec.Time,
		LoggerName: rec.LoggerName,
		Message:    rec.Message,
	}
	if rec.Caller.Defined {
		ent.Caller = zapcore.NewEntryCaller(0, rec.Caller.File, rec.Caller.Line, true)
		ent.Caller.Function = rec.Caller.Function
	}

	fields := h.buf[:0]
	for _, f := range rec.LoggerFields {
		fields = append(fields, Field(f))
	}
	for _, f := range rec.CallFields {
		fields = append(fields, Field(f))
	}
	if rec.ThreadName != "" {
		fields = append(fields, zap.String("thread", rec.ThreadName))
	}
	if len(rec.ContextData) > 0 {
		fields = append(fields, zap.Object(ContextKey, contextObject(rec.ContextData)))
	}

	err := h.core.Write(ent, fields)
	// Drop references held by the reused slice.
	clear(fields)
	h.buf = fields[:0]
	if err != nil {
		return err
	}
	h.stats.IncrementProcessed()
	return nil
}

// Flush syncs the zap core.
func (h *Handler) Flush() error {
	return h.core.Sync()
}

// Stats returns a snapshot of the current statistics
func (h *Handler) Stats() handler.Snapshot {
	return h.stats.GetSnapshot()
}

// Close syncs the zap core. The core itself is owned by the caller.
func (h *Handler) Close() error {
	return h.core.Sync()
}

package logger

import (
	"context"
	"fmt"
	"os"

	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/handler"
)

// osExit is a variable to allow overriding os.Exit in tests
var osExit = os.Exit

// Logger is the main logging interface (immutable)
type Logger struct {
	handler       handler.Handler
	fastHandler   handler.FastHandler
	name          string
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
	clock         core.Clock
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	handler       handler.Handler
	fastHandler   handler.FastHandler
	name          string
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
	clock         core.Clock
}

// NewBuilder creates a new logger builder
func NewBuilder() *Builder {
	return &Builder{
		level:      core.InfoLevel, // Default level
		callerSkip: 3,              // Default skip for getCaller
		clock:      core.SystemClock,
	}
}

// WithHandler sets the handler
func (b *Builder) WithHandler(h handler.Handler) *Builder {
	b.handler = h
	// Cache FastHandler for pool-free hot path
	b.fastHandler, _ = h.(handler.FastHandler)
	return b
}

// WithName sets the logger name
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithLevel sets the log level
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithFields adds default fields to all log entries
func (b *Builder) WithFields(fields ...core.Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

// WithCaller enables caller information
func (b *Builder) WithCaller(enabled bool) *Builder {
	b.includeCaller = enabled
	return b
}

// WithClock sets the timestamp source, e.g. a shared core.CoarseClock.
func (b *Builder) WithClock(c core.Clock) *Builder {
	if c == nil {
		c = core.SystemClock
	}
	b.clock = c
	return b
}

// Build creates the Logger instance
func (b *Builder) Build() *Logger {
	return &Logger{
		handler:       b.handler,
		fastHandler:   b.fastHandler,
		name:          b.name,
		level:         b.level,
		fields:        b.fields,
		includeCaller: b.includeCaller,
		callerSkip:    b.callerSkip,
		clock:         b.clock,
	}
}

// Name returns the logger name.
func (l *Logger) Name() string {
	return l.name
}

// Level returns the minimum level the logger emits.
func (l *Logger) Level() core.Level {
	return l.level
}

// Enabled reports whether a message at level would be logged.
func (l *Logger) Enabled(level core.Level) bool {
	return level >= l.level && l.handler != nil
}

// With creates a new Logger with additional fields (immutable operation)
func (l *Logger) With(fields ...core.Field) *Logger {
	newFields := make([]core.Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	c := *l
	c.fields = newFields
	return &c
}

// Named returns a copy of the logger with a different name.
func (l *Logger) Named(name string) *Logger {
	c := *l
	c.name = name
	return &c
}

// Log logs a message at the specified level
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) {
	// Level check optimization - exit early BEFORE any allocations
	if level < l.level {
		return
	}
	l.log(nil, level, msg, fields)
}

// LogContext logs a message at the specified level, attaching the thread
// name and context data carried by ctx.
func (l *Logger) LogContext(ctx context.Context, level core.Level, msg string, fields ...core.Field) {
	if level < l.level {
		return
	}
	l.log(ctx, level, msg, fields)
}

// log is the internal logging method that takes a pre-allocated slice.
// Call fields are copied into a pooled Record so the variadic slice does
// not escape to the heap.
func (l *Logger) log(ctx context.Context, level core.Level, msg string, fields []core.Field) {
	// Handler check - exit if no handler (avoid any work)
	if l.handler == nil {
		return
	}

	rec := core.GetRecord()
	rec.Time = l.clock.Now()
	rec.Level = level
	rec.LoggerName = l.name
	rec.Message = msg
	rec.LoggerFields = l.fields
	if len(fields) > 0 {
		rec.CallFields = append(rec.CallFields, fields...)
	}
	if ctx != nil {
		rec.ThreadName = core.ThreadName(ctx)
		rec.ContextData = core.ContextData(ctx)
	}
	if l.includeCaller {
		rec.Caller = core.GetCaller(l.callerSkip)
	}

	// Handler errors never reach the caller.
	if l.fastHandler != nil {
		_ = l.fastHandler.HandleLog(rec)
	} else {
		entry := core.GetEntry()
		rec.CopyTo(entry)
		_ = l.handler.Handle(entry)
		core.PutEntry(entry)
	}
	core.PutRecord(rec)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...core.Field) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(nil, core.DebugLevel, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...core.Field) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(nil, core.InfoLevel, msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...core.Field) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(nil, core.WarnLevel, msg, fields)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...core.Field) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(nil, core.ErrorLevel, msg, fields)
}

// Fatal logs a fatal message and exits the program with os.Exit(1)
func (l *Logger) Fatal(msg string, fields ...core.Field) {
	l.log(nil, core.FatalLevel, msg, fields)
	l.sync()
	osExit(1)
}

// Panic logs a panic message and panics
func (l *Logger) Panic(msg string, fields ...core.Field) {
	l.log(nil, core.PanicLevel, msg, fields)
	panic(msg)
}

// DebugContext logs a debug message with the ambient data of ctx
func (l *Logger) DebugContext(ctx context.Context, msg string, fields ...core.Field) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(ctx, core.DebugLevel, msg, fields)
}

// InfoContext logs an info message with the ambient data of ctx
func (l *Logger) InfoContext(ctx context.Context, msg string, fields ...core.Field) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(ctx, core.InfoLevel, msg, fields)
}

// WarnContext logs a warning message with the ambient data of ctx
func (l *Logger) WarnContext(ctx context.Context, msg string, fields ...core.Field) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(ctx, core.WarnLevel, msg, fields)
}

// ErrorContext logs an error message with the ambient data of ctx
func (l *Logger) ErrorContext(ctx context.Context, msg string, fields ...core.Field) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(ctx, core.ErrorLevel, msg, fields)
}

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(format string, args ...interface{}) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(nil, core.DebugLevel, fmt.Sprintf(format, args...), nil)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...interface{}) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(nil, core.InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...interface{}) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(nil, core.WarnLevel, fmt.Sprintf(format, args...), nil)
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...interface{}) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(nil, core.ErrorLevel, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs a fatal message with formatting and exits the program with os.Exit(1)
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(nil, core.FatalLevel, fmt.Sprintf(format, args...), nil)
	l.sync()
	osExit(1)
}

// Panicf logs a panic message with formatting and panics
func (l *Logger) Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.log(nil, core.PanicLevel, msg, nil)
	panic(msg)
}

// sync waits for handlers that append on another goroutine before the
// process exits.
func (l *Logger) sync() {
	if s, ok := l.handler.(handler.Syncer); ok {
		_ = s.Sync()
	}
}

// Close closes the logger's handler. For loggers obtained from a logging
// context this is a no-op; stop the context instead.
func (l *Logger) Close() error {
	if l.handler != nil {
		return l.handler.Close()
	}
	return nil
}

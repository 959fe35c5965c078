package logger

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/philipp01105/asynclog/async"
	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/formatter"
	"github.com/philipp01105/asynclog/handler/consolehandler"
)

func TestLogger_LevelGate(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	logger := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		Build()

	// Debug should not be logged (below Info level)
	logger.Debug("debug message")
	if buf.Len() > 0 {
		t.Error("Debug message was logged when level is Info")
	}

	// Info should be logged
	logger.Info("info message")
	if buf.Len() == 0 {
		t.Error("Info message was not logged")
	}
	if !strings.Contains(buf.String(), "info message") {
		t.Errorf("Expected 'info message' in output, got: %s", buf.String())
	}

	buf.Reset()

	// Warn should be logged
	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Errorf("Expected 'warn message' in output, got: %s", buf.String())
	}

	buf.Reset()

	// Error should be logged
	logger.Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Errorf("Expected 'error message' in output, got: %s", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	logger := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		WithFields(String("app", "test")).
		Build()

	// Create child logger with additional fields
	childLogger := logger.With(String("request_id", "123"))

	childLogger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "app=test") {
		t.Errorf("Expected 'app=test' in output, got: %s", output)
	}
	if !strings.Contains(output, "request_id=123") {
		t.Errorf("Expected 'request_id=123' in output, got: %s", output)
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	logger := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		Build()

	logger.Info("test",
		String("str", "value"),
		Int("int", 42),
		Bool("bool", true),
		Float64("float", 3.14),
	)

	output := buf.String()
	if !strings.Contains(output, "str=value") {
		t.Errorf("Expected 'str=value' in output, got: %s", output)
	}
	if !strings.Contains(output, "int=42") {
		t.Errorf("Expected 'int=42' in output, got: %s", output)
	}
	if !strings.Contains(output, "bool=true") {
		t.Errorf("Expected 'bool=true' in output, got: %s", output)
	}
	if !strings.Contains(output, "float=3.14") {
		t.Errorf("Expected 'float=3.14' in output, got: %s", output)
	}
}

func TestLogger_FormattedLogging(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	logger := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		Build()

	logger.Infof("User %s logged in with ID %d", "alice", 123)

	output := buf.String()
	if !strings.Contains(output, "User alice logged in with ID 123") {
		t.Errorf("Expected formatted message in output, got: %s", output)
	}
}

func TestLogger_ImmutableWith(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	parent := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		WithFields(String("parent", "value")).
		Build()

	child := parent.With(String("child", "value"))

	// Parent should only have parent field
	parent.Info("parent message")
	parentOutput := buf.String()
	if !strings.Contains(parentOutput, "parent=value") {
		t.Error("Parent logger should have parent field")
	}
	if strings.Contains(parentOutput, "child=value") {
		t.Error("Parent logger should not have child field")
	}

	buf.Reset()

	// Child should have both fields
	child.Info("child message")
	childOutput := buf.String()
	if !strings.Contains(childOutput, "parent=value") {
		t.Error("Child logger should have parent field")
	}
	if !strings.Contains(childOutput, "child=value") {
		t.Error("Child logger should have child field")
	}
}

func BenchmarkLogger_LevelCheck(b *testing.B) {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &bytes.Buffer{},
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	logger := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Should exit early due to level check
		logger.Debug("debug message", String("key", "value"))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &bytes.Buffer{},
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	logger := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("test message", String("key", "value"))
	}
}

func BenchmarkLogger_InfoWithFields(b *testing.B) {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &bytes.Buffer{},
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	logger := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("test message",
			String("str", "value"),
			Int("int", 42),
			Bool("bool", true),
			Float64("float", 3.14),
		)
	}
}

func TestLogger_Fatal(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	log := NewBuilder().
		WithHandler(h).
		WithLevel(DebugLevel).
		Build()

	// Override osExit to capture exit code instead of actually exiting
	exitCode := -1
	origExit := osExit
	osExit = func(code int) { exitCode = code }
	defer func() { osExit = origExit }()

	log.Fatal("fatal error", String("key", "value"))

	if exitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "fatal error") {
		t.Errorf("Expected 'fatal error' in output, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "FATAL") {
		t.Errorf("Expected 'FATAL' in output, got: %s", buf.String())
	}
}

func TestLogger_Panic(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	log := NewBuilder().
		WithHandler(h).
		WithLevel(DebugLevel).
		Build()

	defer func() {
		r := recover()
		if r == nil {
			t.Error("Expected panic, got nil")
		}
		if r != "panic message" {
			t.Errorf("Expected panic with 'panic message', got: %v", r)
		}
		if !strings.Contains(buf.String(), "panic message") {
			t.Errorf("Expected 'panic message' in output, got: %s", buf.String())
		}
		if !strings.Contains(buf.String(), "PANIC") {
			t.Errorf("Expected 'PANIC' in output, got: %s", buf.String())
		}
	}()

	log.Panic("panic message")
}

func TestLogger_WithCoarseClock(t *testing.T) {
	clock := core.NewCoarseClock(0)
	defer clock.Stop()

	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	log := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		WithClock(clock).
		Build()

	log.Info("coarse clock message")
	output := buf.String()
	if !strings.Contains(output, "coarse clock message") {
		t.Errorf("Expected 'coarse clock message' in output, got: %s", output)
	}

	buf.Reset()

	// Also test with fields (non-fast path)
	log.Info("with field", String("key", "value"))
	output = buf.String()
	if !strings.Contains(output, "with field") {
		t.Errorf("Expected 'with field' in output, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Expected 'key=value' in output, got: %s", output)
	}
}

func TestLogger_CoarseClockWith(t *testing.T) {
	clock := core.NewCoarseClock(0)
	defer clock.Stop()

	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	parent := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		WithClock(clock).
		Build()

	child := parent.With(String("child", "value"))
	child.Info("child message")
	output := buf.String()
	if !strings.Contains(output, "child message") {
		t.Errorf("Expected 'child message' in output, got: %s", output)
	}
}

func TestParseLevel_FatalPanic(t *testing.T) {
	if ParseLevel("FATAL") != FatalLevel {
		t.Error("Expected FatalLevel for 'FATAL'")
	}
	if ParseLevel("PANIC") != PanicLevel {
		t.Error("Expected PanicLevel for 'PANIC'")
	}
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func TestLogger_WithClock(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer: &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{
			TimestampFormat: time.RFC3339,
		}),
	})

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	log := NewBuilder().
		WithHandler(h).
		WithClock(fixedClock(ts)).
		Build()

	log.Info("stamped")
	if !strings.HasPrefix(buf.String(), "2024-03-01T12:00:00Z") {
		t.Errorf("Expected fixed timestamp, got: %s", buf.String())
	}
}

func TestLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	log := NewBuilder().WithHandler(h).WithName("api").Build()
	db := log.Named("api.db")

	if log.Name() != "api" || db.Name() != "api.db" {
		t.Fatalf("Name() = %q, %q", log.Name(), db.Name())
	}

	db.Info("query")
	if !strings.Contains(buf.String(), "api.db: query") {
		t.Errorf("Expected logger name in output, got: %s", buf.String())
	}
}

func TestLogger_ContextMethods(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})
	log := NewBuilder().WithHandler(h).WithLevel(DebugLevel).Build()

	ctx := core.WithThreadName(context.Background(), "req-7")
	ctx = core.WithContextData(ctx, String("user", "alice"))

	log.InfoContext(ctx, "handled", Int("status", 200))
	out := buf.String()
	for _, want := range []string{"[req-7]", "handled", "status=200", "user=alice"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got: %s", want, out)
		}
	}

	buf.Reset()
	log.LogContext(ctx, WarnLevel, "warned")
	log.DebugContext(ctx, "debugged")
	log.ErrorContext(ctx, "errored")
	log.WarnContext(ctx, "warned again")
	if n := strings.Count(buf.String(), "user=alice"); n != 4 {
		t.Errorf("Expected context data on 4 lines, got %d: %s", n, buf.String())
	}
}

func TestLogger_Enabled(t *testing.T) {
	log := NewBuilder().WithLevel(WarnLevel).Build()
	if log.Enabled(ErrorLevel) {
		t.Error("Logger without handler must not be enabled")
	}

	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{Writer: &bytes.Buffer{}})
	log = NewBuilder().WithHandler(h).WithLevel(WarnLevel).Build()
	if log.Enabled(InfoLevel) || !log.Enabled(WarnLevel) {
		t.Error("Enabled() does not follow the level")
	}
	if log.Level() != WarnLevel {
		t.Errorf("Level() = %v", log.Level())
	}
}

// nonFastHandler implements only handler.Handler.
type nonFastHandler struct {
	entries []core.Entry
}

func (n *nonFastHandler) Handle(e *core.Entry) error {
	c := *e
	c.Fields = append([]core.Field(nil), e.Fields...)
	n.entries = append(n.entries, c)
	return nil
}

func (n *nonFastHandler) Close() error { return nil }

func TestLogger_PlainHandler(t *testing.T) {
	h := &nonFastHandler{}
	log := NewBuilder().WithHandler(h).WithName("plain").WithFields(String("a", "1")).Build()

	log.Warn("one", Int("b", 2))
	if len(h.entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(h.entries))
	}
	e := h.entries[0]
	if e.LoggerName != "plain" || e.Level != WarnLevel || e.Message != "one" || len(e.Fields) != 2 {
		t.Errorf("unexpected entry: %+v", e)
	}
}

// slowRecorder appends with a delay so events pile up in an async engine.
type slowRecorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *slowRecorder) Handle(e *core.Entry) error {
	time.Sleep(time.Millisecond)
	r.mu.Lock()
	r.msgs = append(r.msgs, e.Message)
	r.mu.Unlock()
	return nil
}

func (r *slowRecorder) Close() error { return nil }

func (r *slowRecorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func TestLogger_FatalDrainsAsyncHandler(t *testing.T) {
	rec := &slowRecorder{}
	opts := async.DefaultOptions()
	opts.RingBufferSize = 64
	e, err := async.NewEngine(rec, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	defer e.Stop(context.Background())

	log := NewBuilder().WithHandler(e.Gateway()).WithLevel(DebugLevel).Build()

	var exitMsgs []string
	origExit := osExit
	osExit = func(code int) { exitMsgs = rec.messages() }
	defer func() { osExit = origExit }()

	for i := 0; i < 20; i++ {
		log.Info("buffered")
	}
	log.Fatal("fatal error")

	if len(exitMsgs) != 21 {
		t.Fatalf("Expected 21 appended events before exit, got %d", len(exitMsgs))
	}
	if exitMsgs[20] != "fatal error" {
		t.Errorf("Expected the fatal event last, got %q", exitMsgs[20])
	}

	log.Fatalf("fatal %d", 2)
	if got := exitMsgs[len(exitMsgs)-1]; got != "fatal 2" {
		t.Errorf("Expected Fatalf to drain before exit, last event %q", got)
	}
}

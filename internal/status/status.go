// Package status is the internal diagnostics channel of the logging
// pipeline. Errors that must never reach application code (append
// failures, translation panics, shutdown timeouts) are reported here
// instead, rate limited per category so a broken appender cannot flood
// stderr.
package status

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-catrate"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category groups reports for rate limiting.
type Category string

const (
	CategoryAppend    Category = "append"
	CategoryFlush     Category = "flush"
	CategoryTranslate Category = "translate"
	CategoryShutdown  Category = "shutdown"
	CategoryLifecycle Category = "lifecycle"
)

// DefaultRates allows bursts of 5 reports per second and 60 per minute
// for each category.
func DefaultRates() map[time.Duration]int {
	return map[time.Duration]int{
		time.Second: 5,
		time.Minute: 60,
	}
}

// Logger reports pipeline diagnostics. A nil *Logger discards everything.
type Logger struct {
	log        *zap.Logger
	limiter    *catrate.Limiter
	suppressed *atomic.Uint64
}

// New returns a Logger writing to log. rates configures per-category rate
// limiting; nil or empty disables it.
func New(log *zap.Logger, rates map[time.Duration]int) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Logger{log: log, suppressed: new(atomic.Uint64)}
	if len(rates) != 0 {
		l.limiter = catrate.NewLimiter(rates)
	}
	return l
}

// Default returns a Logger writing JSON to stderr at Warn and above.
func Default() *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zapcore.WarnLevel,
	)
	return New(zap.New(core).Named("asynclog"), DefaultRates())
}

// Named returns a Logger whose entries carry name, sharing the rate limiter
// and suppression count.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{log: l.log.Named(name), limiter: l.limiter, suppressed: l.suppressed}
}

// Error reports a failure in category.
func (l *Logger) Error(c Category, msg string, fields ...zap.Field) {
	l.report(zapcore.ErrorLevel, c, msg, fields)
}

// Warn reports a recoverable problem in category.
func (l *Logger) Warn(c Category, msg string, fields ...zap.Field) {
	l.report(zapcore.WarnLevel, c, msg, fields)
}

// Info reports a lifecycle event. Info reports are not rate limited.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	if l == nil {
		return
	}
	l.log.Info(msg, fields...)
}

// Suppressed returns the number of reports dropped by the rate limiter.
func (l *Logger) Suppressed() uint64 {
	if l == nil {
		return 0
	}
	return l.suppressed.Load()
}

func (l *Logger) report(lvl zapcore.Level, c Category, msg string, fields []zap.Field) {
	if l == nil {
		return
	}
	ce := l.log.Check(lvl, msg)
	if ce == nil {
		return
	}
	next, ok := l.limiter.Allow(c)
	if !ok {
		l.suppressed.Add(1)
		return
	}
	fields = append(fields, zap.String("category", string(c)))
	if !next.IsZero() {
		// last report before the limit applies
		fields = append(fields, zap.Time("limited_until", next))
	}
	ce.Write(fields...)
}

package logctx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/philipp01105/asynclog/async"
	"github.com/philipp01105/asynclog/config"
	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/handler"
	"github.com/philipp01105/asynclog/handler/sloghandler"
	"github.com/philipp01105/asynclog/internal/status"
	"github.com/philipp01105/asynclog/logger"
)

var (
	// ErrStopped is returned when starting a context that was stopped. A
	// stopped context has closed its appender.
	ErrStopped = errors.New("logctx: context stopped")
	// ErrModeChange is returned by StartWithConfig when cfg selects a
	// different mode than the context was created with.
	ErrModeChange = errors.New("logctx: mode cannot change after construction")
)

// Context owns an append pipeline and the loggers writing to it. In async
// mode it holds an async.Engine and its loggers publish through the
// engine's gateway; in sync mode loggers call the appender directly.
type Context struct {
	name     string
	appender handler.Handler
	engine   *async.Engine // nil in sync mode
	handler  handler.Handler
	shared   *sharedHandler
	status   *status.Logger

	mu      sync.Mutex
	cfg     config.Config
	clock   *core.CoarseClock
	started bool
	stopped bool
	loggers map[string]*logger.Logger
}

// New creates a stopped context named name that appends to appender. An
// empty name falls back to cfg.Name, then to a generated one.
func New(name string, cfg config.Config, appender handler.Handler) (*Context, error) {
	if appender == nil {
		return nil, fmt.Errorf("logctx: nil appender")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		name = cfg.Name
	}
	if name == "" {
		name = "asynclog-" + uuid.NewString()
	}
	cfg.Name = name

	st := status.Default().Named("logctx")
	c := &Context{
		name:     name,
		appender: appender,
		handler:  appender,
		status:   st,
		cfg:      cfg,
		loggers:  make(map[string]*logger.Logger),
	}
	if cfg.Mode == config.ModeAsync {
		opts := cfg.EngineOptions()
		opts.Status = st
		e, err := async.NewEngine(appender, opts)
		if err != nil {
			return nil, fmt.Errorf("logctx: %s: %w", name, err)
		}
		c.engine = e
		c.handler = e.Gateway()
	}
	c.shared = newSharedHandler(c.handler)
	return c, nil
}

// Name returns the context name.
func (c *Context) Name() string {
	return c.name
}

// Mode returns the mode chosen at construction.
func (c *Context) Mode() config.Mode {
	if c.engine != nil {
		return config.ModeAsync
	}
	return config.ModeSync
}

// Config returns the configuration of the current or next start.
func (c *Context) Config() config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Start starts the engine, then marks the context started. It is a no-op
// when already started.
func (c *Context) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked()
}

// StartWithConfig replaces the configuration and starts the context. The
// mode cannot change. Loggers already handed out keep their level.
func (c *Context) StartWithConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Mode != c.Mode() {
		return fmt.Errorf("%w: %s to %s", ErrModeChange, c.Mode(), cfg.Mode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	cfg.Name = c.name
	c.cfg = cfg
	c.loggers = make(map[string]*logger.Logger)
	return c.startLocked()
}

func (c *Context) startLocked() error {
	if c.stopped {
		return ErrStopped
	}
	if c.started {
		return nil
	}
	if c.engine != nil {
		opts := c.cfg.EngineOptions()
		opts.Status = c.status
		if err := c.engine.StartWithOptions(opts); err != nil {
			return fmt.Errorf("logctx: start %s: %w", c.name, err)
		}
	}
	if d := time.Duration(c.cfg.CoarseClock); d > 0 && c.clock == nil {
		c.clock = core.NewCoarseClock(d)
	}
	c.started = true
	c.status.Info("context started", zap.String("name", c.name), zap.String("mode", string(c.cfg.Mode)))
	return nil
}

// Stop drains the engine, bounded by ctx and the configured shutdown
// timeout, and then closes the appender. It returns the number of events
// lost to the drain deadline and every error met on the way. When an
// append never returns, Stop still returns after the deadline with an
// error wrapping async.ErrAppenderBusy; the appender is closed once that
// append returns. Stop is a no-op unless started.
func (c *Context) Stop(ctx context.Context) (lost uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return 0, nil
	}
	c.started = false
	c.stopped = true

	if c.engine != nil {
		lost, err = c.engine.Stop(ctx)
		// returns ErrAppenderBusy instead of waiting on a consumer stuck
		// in an append
		err = multierr.Append(err, c.engine.Gateway().Close())
	} else {
		err = c.appender.Close()
	}
	if c.clock != nil {
		c.clock.Stop()
	}
	if err != nil {
		c.status.Error(status.CategoryLifecycle, "context stopped with errors",
			zap.String("name", c.name),
			zap.Uint64("lost", lost),
			zap.Error(err),
		)
	}
	return lost, err
}

// Started reports whether the context is started.
func (c *Context) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Logger returns the logger called name, creating it on first use. All
// loggers of a context share its handler; closing one of them leaves the
// handler open. Loggers obtained before Start append synchronously until
// the engine runs.
func (c *Context) Logger(name string) *logger.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.loggers[name]; ok {
		return l
	}
	b := logger.NewBuilder().
		WithHandler(c.shared).
		WithName(name).
		WithLevel(c.cfg.Level).
		WithCaller(c.cfg.IncludeCaller)
	if c.clock != nil {
		b.WithClock(c.clock)
	}
	l := b.Build()
	c.loggers[name] = l
	return l
}

// Slog returns a slog.Logger called name that writes through the
// context's handler.
func (c *Context) Slog(name string) *slog.Logger {
	return slog.New(sloghandler.NewSlogHandler(c.handler, c.Config().Level).WithName(name))
}

// RingBufferAdmin returns the engine's admin snapshot. In sync mode only
// the name is set.
func (c *Context) RingBufferAdmin() async.RingBufferAdmin {
	if c.engine == nil {
		return async.RingBufferAdmin{Name: c.name}
	}
	return c.engine.Admin()
}

// Stats returns the counters of the context's handler.
func (c *Context) Stats() handler.Snapshot {
	if sp, ok := c.handler.(handler.StatsProvider); ok {
		return sp.Stats()
	}
	return handler.Snapshot{}
}

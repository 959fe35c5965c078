package async

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/handler"
	"github.com/philipp01105/asynclog/internal/status"
	"github.com/philipp01105/asynclog/ring"
)

// run is the state of one Start..Stop cycle: a fresh ring buffer and the
// consumer goroutine draining it.
type run struct {
	opts   Options
	buf    *ring.Buffer[event]
	status *status.Logger

	stopping chan struct{} // closed when Stop begins; aborts blocked claims
	stop     chan struct{} // closed once target is recorded; consumer drains
	done     chan struct{} // closed when the consumer returns
	wake     chan struct{}

	target atomic.Int64 // claimed cursor observed at stop
	abort  atomic.Bool
	parked atomic.Bool
}

func newRun(opts Options) (*run, error) {
	buf, err := ring.New[event](opts.RingBufferSize, initEvent)
	if err != nil {
		return nil, err
	}
	return &run{
		opts:     opts,
		buf:      buf,
		status:   opts.Status.Named("async"),
		stopping: make(chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}, nil
}

// finished reports whether the consumer of r has returned.
func (r *run) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// park blocks the consumer until a producer publishes or stop is
// signalled. The parked flag is raised before the final check so a
// concurrent publish either is seen here or sees the flag.
func (r *run) park() {
	r.parked.Store(true)
	if _, ok := r.buf.NextToConsume(); ok {
		r.parked.Store(false)
		return
	}
	select {
	case <-r.wake:
	case <-r.stop:
	}
	r.parked.Store(false)
}

// signal wakes a parked consumer.
func (r *run) signal() {
	if r.parked.Load() {
		select {
		case r.wake <- struct{}{}:
		default:
		}
	}
}

// Engine hands log events from any number of producer goroutines to one
// consumer goroutine through a ring buffer. The consumer is the only
// caller of the append pipeline, except for synchronous fallbacks, which
// are serialized with it.
type Engine struct {
	appender handler.Handler
	flusher  handler.Flusher
	fast     handler.FastHandler
	stats    *handler.Stats

	mu   sync.Mutex // serializes Start and Stop; guards opts
	opts Options

	state    fastState
	inflight atomic.Int64
	run      atomic.Pointer[run]

	appendMu  sync.Mutex // serializes calls into appender
	consumers atomic.Int32
	gateway   *Gateway

	closeMu      sync.Mutex // guards appClosed and closePending
	appClosed    bool
	closePending bool
}

// abortGrace is how long Stop lets an aborted consumer return before
// leaving it behind.
const abortGrace = 10 * time.Millisecond

// NewEngine returns an engine in StateCreated that appends to appender.
func NewEngine(appender handler.Handler, opts Options) (*Engine, error) {
	if appender == nil {
		return nil, fmt.Errorf("async: nil appender")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	e := &Engine{
		appender: appender,
		stats:    handler.NewStats(),
		opts:     opts,
	}
	e.flusher, _ = appender.(handler.Flusher)
	e.fast, _ = appender.(handler.FastHandler)
	e.gateway = &Gateway{e: e}
	return e, nil
}

// Gateway returns the producer-facing handler shared by every logger of
// this engine.
func (e *Engine) Gateway() *Gateway {
	return e.gateway
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state.Load()
}

// Options returns the options the next Start will use.
func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// Start allocates a ring buffer and starts the consumer. It returns once
// the consumer is running. Start is a no-op when already started.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked()
}

// StartWithOptions replaces the options and starts the engine. When the
// engine is already started the new options are ignored.
func (e *Engine) StartWithOptions(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Load() == StateStarted {
		return nil
	}
	e.opts = opts.withDefaults()
	return e.startLocked()
}

func (e *Engine) startLocked() error {
	prev := e.state.Load()
	if prev == StateStarted {
		return nil
	}
	if old := e.run.Load(); old != nil && !old.finished() {
		if err := e.awaitConsumer(old); err != nil {
			return err
		}
	}
	e.state.Store(StateStarting)

	r, err := newRun(e.opts)
	if err != nil {
		e.state.Store(prev)
		return fmt.Errorf("async: start %q: %w", e.opts.Name, err)
	}
	e.run.Store(r)

	running := make(chan struct{})
	go e.consume(r, running)
	<-running

	e.state.Store(StateStarted)
	r.status.Info("engine started",
		zap.String("name", e.opts.Name),
		zap.Int("ring_buffer_size", e.opts.RingBufferSize),
		zap.Stringer("policy", e.opts.Policy),
	)
	return nil
}

// awaitConsumer waits for the consumer of an aborted run, bounded by the
// shutdown timeout.
func (e *Engine) awaitConsumer(r *run) error {
	d := e.opts.ShutdownTimeout
	if d <= 0 {
		d = DefaultShutdownTimeout
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-r.done:
		return nil
	case <-t.C:
		return fmt.Errorf("async: start %q: %w", e.opts.Name, ErrConsumerBusy)
	}
}

// Stop rejects new events, waits for producers already inside the
// engine, then drains the ring buffer. The drain is bounded by ctx and by
// Options.ShutdownTimeout; when either expires the consumer is aborted and
// Stop returns the number of events left unappended together with an
// error wrapping ErrShutdownTimeout. Stop is a no-op unless started.
func (e *Engine) Stop(ctx context.Context) (lost uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.TryTransition(StateStarted, StateStopping) {
		return 0, nil
	}
	r := e.run.Load()

	close(r.stopping)
	e.awaitProducers()
	r.target.Store(r.buf.Cursor())
	close(r.stop)

	var timeout <-chan time.Time
	if d := e.opts.ShutdownTimeout; d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case <-r.done:
	case <-ctx.Done():
		err = fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	case <-timeout:
		err = ErrShutdownTimeout
	}

	if err != nil {
		r.abort.Store(true)
		if n := r.target.Load() - r.buf.Consumed(); n > 0 {
			lost = uint64(n)
		}
		e.stats.AddLost(lost)
		r.status.Error(status.CategoryShutdown, "drain deadline expired",
			zap.String("name", e.opts.Name),
			zap.Uint64("lost", lost),
			zap.Error(err),
		)

		grace := time.NewTimer(abortGrace)
		select {
		case <-r.done:
		case <-grace.C:
			r.status.Warn(status.CategoryShutdown, "aborted consumer still inside the appender",
				zap.String("name", e.opts.Name),
			)
		}
		grace.Stop()
	}

	e.state.Store(StateStopped)
	r.status.Info("engine stopped", zap.String("name", e.opts.Name), zap.Uint64("lost", lost))
	return lost, err
}

// awaitProducers waits until no producer is between its state check and
// its publish. Blocked claims were released by closing run.stopping, so
// the wait is bounded by translation work.
func (e *Engine) awaitProducers() {
	for i := 0; e.inflight.Load() != 0; i++ {
		if i < 16 {
			runtime.Gosched()
		} else {
			time.Sleep(time.Microsecond * 50)
		}
	}
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() handler.Snapshot {
	return e.stats.GetSnapshot()
}

// publish hands rec to the consumer. A nil return means the event was
// published. errDropped, errBypass and ErrNotStarted tell the Gateway what
// to do instead.
func (e *Engine) publish(rec *core.Record) error {
	e.inflight.Add(1)
	defer e.inflight.Add(-1)

	if e.state.Load() != StateStarted {
		return ErrNotStarted
	}
	r := e.run.Load()

	seq, ok := r.buf.TryClaim()
	if !ok {
		switch {
		case r.opts.Policy == PolicySynchronous:
			return errBypass
		case r.opts.Policy == PolicyDiscard && rec.Level <= r.opts.DiscardThreshold:
			e.stats.IncrementDropped(rec.Level)
			return errDropped
		}
		// count only producers that really wait for a slot
		if seq, ok = r.buf.TryClaim(); !ok {
			e.stats.IncrementBlocked()
			var err error
			if seq, _, err = r.buf.Claim(r.stopping); err != nil {
				// stopping: the caller falls back to a synchronous append
				return ErrNotStarted
			}
		}
	}

	ev := r.buf.Slot(seq)
	if err := translate(ev, rec); err != nil {
		e.stats.IncrementTranslateErrors()
		r.status.Warn(status.CategoryTranslate, "event translation failed",
			zap.String("logger", rec.LoggerName),
			zap.Error(err),
		)
	}
	r.buf.Publish(seq)
	r.signal()
	return nil
}

// appendSync appends rec on the calling goroutine.
func (e *Engine) appendSync(rec *core.Record) error {
	e.stats.IncrementSync()
	e.appendMu.Lock()
	defer e.appendMu.Unlock()
	if e.fast != nil {
		return e.fast.HandleLog(rec)
	}
	entry := core.GetEntry()
	rec.CopyTo(entry)
	err := e.appender.Handle(entry)
	core.PutEntry(entry)
	return err
}

// Sync waits until every event published before the call has been
// appended, bounded by ctx and the shutdown timeout. The consumer flushes
// at the end of each batch, so a nil return means the events reached the
// appender's flush. When the engine is not started Sync only flushes.
func (e *Engine) Sync(ctx context.Context) error {
	r := e.run.Load()
	if r == nil || e.state.Load() != StateStarted {
		return e.flushSync()
	}
	target := r.buf.Cursor()

	var timeout <-chan time.Time
	if d := r.opts.ShutdownTimeout; d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		timeout = t.C
	}
	for i := 0; r.buf.Consumed() < target; i++ {
		select {
		case <-r.done:
			if r.buf.Consumed() < target {
				return ErrSyncTimeout
			}
			return nil
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrSyncTimeout, ctx.Err())
		case <-timeout:
			return ErrSyncTimeout
		default:
		}
		if i < 16 {
			runtime.Gosched()
		} else {
			time.Sleep(time.Microsecond * 50)
		}
	}
	return nil
}

func (e *Engine) flushSync() error {
	if e.flusher == nil {
		return nil
	}
	return e.safeFlush()
}

// closeAppender closes the append pipeline once. While the consumer of an
// aborted drain is still inside the appender the close is handed to that
// consumer and ErrAppenderBusy is returned.
func (e *Engine) closeAppender() error {
	e.closeMu.Lock()
	defer e.closeMu.Unlock()
	if e.appClosed {
		return nil
	}
	if e.closePending {
		return ErrAppenderBusy
	}
	if r := e.run.Load(); r != nil && !r.finished() {
		e.closePending = true
		r.status.Warn(status.CategoryShutdown, "appender close deferred until the consumer returns",
			zap.String("name", r.opts.Name),
		)
		return ErrAppenderBusy
	}
	e.appClosed = true
	e.appendMu.Lock()
	defer e.appendMu.Unlock()
	return e.appender.Close()
}

// exitConsumer marks r finished and runs a close deferred by
// closeAppender.
func (e *Engine) exitConsumer(r *run) {
	e.consumers.Add(-1)

	e.closeMu.Lock()
	defer e.closeMu.Unlock()
	close(r.done)
	if !e.closePending {
		return
	}
	e.closePending = false
	e.appClosed = true

	e.appendMu.Lock()
	err := e.appender.Close()
	e.appendMu.Unlock()
	if err != nil {
		r.status.Error(status.CategoryShutdown, "deferred appender close failed",
			zap.String("name", r.opts.Name),
			zap.Error(err),
		)
		return
	}
	r.status.Info("appender closed after aborted drain", zap.String("name", r.opts.Name))
}

package async

import (
	"context"

	"go.uber.org/multierr"

	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/handler"
)

// Gateway is the producer side of an Engine. It implements
// handler.Handler and handler.FastHandler, so loggers use it like any
// other handler. Log calls never block on I/O unless the full-buffer
// policy is PolicySynchronous or the engine is not started, in which case
// the event is appended on the caller's goroutine.
type Gateway struct {
	e *Engine
}

// HandleLog publishes rec to the ring buffer.
func (g *Gateway) HandleLog(rec *core.Record) error {
	switch err := g.e.publish(rec); err {
	case nil, errDropped:
		return nil
	case errBypass, ErrNotStarted:
		return g.e.appendSync(rec)
	default:
		return err
	}
}

// Handle publishes a copy of entry to the ring buffer.
func (g *Gateway) Handle(entry *core.Entry) error {
	var rec core.Record
	rec.FromEntry(entry)
	return g.HandleLog(&rec)
}

// Stats returns the engine counters.
func (g *Gateway) Stats() handler.Snapshot {
	return g.e.Stats()
}

// Sync waits, bounded by the shutdown timeout, until the consumer has
// appended every event published so far.
func (g *Gateway) Sync() error {
	return g.e.Sync(context.Background())
}

// Close stops the engine, bounded by its shutdown timeout, and closes the
// append pipeline. Closing again is a no-op. When the drain was aborted
// while the consumer is stuck in an append, the error wraps
// ErrAppenderBusy and the pipeline is closed once the consumer returns.
func (g *Gateway) Close() error {
	_, err := g.e.Stop(context.Background())
	return multierr.Append(err, g.e.closeAppender())
}

var (
	_ handler.Handler       = (*Gateway)(nil)
	_ handler.FastHandler   = (*Gateway)(nil)
	_ handler.StatsProvider = (*Gateway)(nil)
	_ handler.Syncer        = (*Gateway)(nil)
)

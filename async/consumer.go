package async

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/philipp01105/asynclog/internal/status"
)

// consume is the consumer loop of one run. It appends events in sequence
// order, flushes at the end of every batch, and returns once stop was
// signalled and every sequence claimed before it has been consumed, or
// when the drain is aborted.
func (e *Engine) consume(r *run, running chan<- struct{}) {
	e.consumers.Add(1)
	defer e.exitConsumer(r)
	close(running)

	w := waiter{strategy: r.opts.WaitStrategy}
	limit := int64(r.opts.BatchLimit)
	next := r.buf.Consumed()

	for !r.abort.Load() {
		hi := r.buf.HighestPublished(next, limit)
		if hi < next {
			select {
			case <-r.stop:
				if next >= r.target.Load() {
					return
				}
			default:
			}
			w.idle(r)
			continue
		}
		w.reset()

		for seq := next; seq <= hi; seq++ {
			if r.abort.Load() {
				return
			}
			ev := r.buf.Slot(seq)
			if !ev.discard {
				e.appendEvent(r, ev, seq)
			}
			ev.release()
			r.buf.MarkConsumed(seq)
		}
		next = hi + 1
		e.endOfBatch(r)
	}
}

// appendEvent calls the append pipeline for one slot. Errors and panics
// are counted and reported; they never stop the loop.
func (e *Engine) appendEvent(r *run, ev *event, seq int64) {
	err := e.safeAppend(ev)
	if err == nil {
		e.stats.IncrementProcessed()
		return
	}
	e.stats.IncrementAppendErrors()
	r.status.Error(status.CategoryAppend, "append failed",
		zap.String("name", r.opts.Name),
		zap.Int64("seq", seq),
		zap.String("logger", ev.LoggerName),
		zap.Error(err),
	)
}

func (e *Engine) safeAppend(ev *event) (err error) {
	e.appendMu.Lock()
	defer e.appendMu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("async: append panicked: %v", p)
		}
	}()
	return e.appender.Handle(&ev.Entry)
}

// endOfBatch flushes buffering appenders once the visible events have
// been appended.
func (e *Engine) endOfBatch(r *run) {
	if e.flusher == nil {
		return
	}
	if err := e.safeFlush(); err != nil {
		r.status.Error(status.CategoryFlush, "flush failed",
			zap.String("name", r.opts.Name),
			zap.Error(err),
		)
	}
}

func (e *Engine) safeFlush() (err error) {
	e.appendMu.Lock()
	defer e.appendMu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("async: flush panicked: %v", p)
		}
	}()
	return e.flusher.Flush()
}

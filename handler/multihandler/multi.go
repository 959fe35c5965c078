package multihandler

import (
	"go.uber.org/multierr"

	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/handler"
)

// MultiHandler sends log entries to multiple handlers
type MultiHandler struct {
	handlers     []handler.Handler
	fastHandlers []handler.FastHandler // cached FastHandler interfaces (nil when handler doesn't implement it)
	allFast      bool                  // true when every child implements FastHandler
}

// NewMultiHandler creates a new multi-handler
func NewMultiHandler(handlers ...handler.Handler) *MultiHandler {
	m := &MultiHandler{
		handlers:     handlers,
		fastHandlers: make([]handler.FastHandler, len(handlers)),
		allFast:      true,
	}
	for i, h := range handlers {
		if fh, ok := h.(handler.FastHandler); ok {
			m.fastHandlers[i] = fh
		} else {
			m.allFast = false
		}
	}
	return m
}

// HandleLog processes log data directly without requiring a pooled Entry.
// When all children implement FastHandler, this avoids Entry allocation entirely.
// Every child is called; their errors are combined.
func (h *MultiHandler) HandleLog(rec *core.Record) error {
	var err error
	if h.allFast {
		for _, fh := range h.fastHandlers {
			err = multierr.Append(err, fh.HandleLog(rec))
		}
		return err
	}

	// Mixed path: build a pooled entry for non-fast handlers
	entry := core.GetEntry()
	rec.CopyTo(entry)
	for i, child := range h.handlers {
		if fh := h.fastHandlers[i]; fh != nil {
			err = multierr.Append(err, fh.HandleLog(rec))
		} else {
			err = multierr.Append(err, child.Handle(entry))
		}
	}
	core.PutEntry(entry)
	return err
}

// Handle processes a log entry by sending it to all handlers
func (h *MultiHandler) Handle(entry *core.Entry) error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Handle(entry))
	}
	return err
}

// Flush flushes every child that buffers output.
func (h *MultiHandler) Flush() error {
	var err error
	for _, child := range h.handlers {
		if f, ok := child.(handler.Flusher); ok {
			err = multierr.Append(err, f.Flush())
		}
	}
	return err
}

// Close closes all handlers
func (h *MultiHandler) Close() error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Close())
	}
	return err
}

package benchmark

import (
	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/handler"
)

// noopHandler measures the pipeline without formatting or I/O.
type noopHandler struct{}

func newNoopHandler() handler.Handler {
	return &noopHandler{}
}

func (h *noopHandler) Handle(e *core.Entry) error {
	_ = len(e.Message)
	return nil
}

func (h *noopHandler) HandleLog(rec *core.Record) error {
	_ = len(rec.Message)
	return nil
}

func (h *noopHandler) Close() error {
	return nil
}

package logctx

import (
	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/handler"
)

// sharedHandler is the handler of every logger a Context hands out.
// Closing it is a no-op: the pipeline belongs to the context and is closed
// by Stop.
type sharedHandler struct {
	h    handler.Handler
	fast handler.FastHandler
}

func newSharedHandler(h handler.Handler) *sharedHandler {
	s := &sharedHandler{h: h}
	s.fast, _ = h.(handler.FastHandler)
	return s
}

func (s *sharedHandler) Handle(e *core.Entry) error {
	return s.h.Handle(e)
}

func (s *sharedHandler) HandleLog(rec *core.Record) error {
	if s.fast != nil {
		return s.fast.HandleLog(rec)
	}
	entry := core.GetEntry()
	rec.CopyTo(entry)
	err := s.h.Handle(entry)
	core.PutEntry(entry)
	return err
}

// Sync forwards to the context's handler when it appends asynchronously.
func (s *sharedHandler) Sync() error {
	if sy, ok := s.h.(handler.Syncer); ok {
		return sy.Sync()
	}
	return nil
}

func (s *sharedHandler) Stats() handler.Snapshot {
	if sp, ok := s.h.(handler.StatsProvider); ok {
		return sp.Stats()
	}
	return handler.Snapshot{}
}

func (s *sharedHandler) Close() error { return nil }

var (
	_ handler.Handler       = (*sharedHandler)(nil)
	_ handler.FastHandler   = (*sharedHandler)(nil)
	_ handler.Syncer        = (*sharedHandler)(nil)
	_ handler.StatsProvider = (*sharedHandler)(nil)
)

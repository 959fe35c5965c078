package handler

import (
	"github.com/philipp01105/asynclog/core"
)

// Handler defines the interface for log handlers
type Handler interface {
	// Handle processes a log entry. The entry is only valid until Handle
	// returns.
	Handle(entry *core.Entry) error

	// Close closes the handler and releases resources
	Close() error
}

// FastHandler is an optional interface that handlers can implement
// to process log data directly without requiring an Entry from the pool.
type FastHandler interface {
	HandleLog(rec *core.Record) error
}

// StatsProvider is implemented by handlers that track Stats.
type StatsProvider interface {
	Stats() Snapshot
}

// Syncer is implemented by handlers that append on another goroutine.
// Sync returns once the events accepted so far have been appended.
type Syncer interface {
	Sync() error
}

// Flusher is implemented by handlers that buffer output. Asynchronous
// engines call Flush at the end of every consumed batch.
type Flusher interface {
	Flush() error
}

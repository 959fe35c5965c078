// Package handler provides the Handler interface and the types shared by
// its implementations.
//
// A Handler is the append pipeline of a logger: it receives a fully
// populated core.Entry and writes it somewhere. Handlers in the
// subpackages are synchronous; asynchronous delivery is the job of the
// async package, whose Gateway is itself a Handler that hands entries to
// a ring buffer and calls the real Handler from a single consumer
// goroutine.
//
// Optional interfaces refine a Handler:
//
//   - FastHandler accepts a core.Record directly, skipping the Entry pool.
//   - Flusher lets the async consumer flush buffered output at the end of
//     every batch.
//   - StatsProvider exposes a Snapshot of the handler's Stats.
//
// Built-in handlers:
//
//   - consolehandler writes formatted entries to any io.Writer (default: stdout).
//   - filehandler writes to a file with automatic rotation by size, age,
//     or interval, and manages old backup cleanup.
//   - multihandler fans out a single entry to multiple child handlers.
//   - sloghandler adapts a Handler to log/slog.Handler.
//   - zaphandler forwards entries into a zapcore.Core.
//
// Stats counts dropped, blocked, processed, synchronous-fallback,
// translation-error, append-error and lost events; handlers and the async
// engine share it.
package handler

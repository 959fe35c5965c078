package consolehandler

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/formatter"
	"github.com/philipp01105/asynclog/handler"
)

// lockedWriter wraps an io.Writer with a mutex, acquiring the lock only
// for Write calls. Formatters prepare data in their own pooled buffers
// and call Write once, so the lock is held only during the actual I/O.
// Uses the handler's main mu to serialize all writes.
type lockedWriter struct {
	mu *sync.Mutex // points to handler's mu
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	n, err = lw.w.Write(p)
	lw.mu.Unlock()
	return
}

// isConcurrentSafeWriter returns true if the writer is known to be safe for
// concurrent Write calls, allowing the handler to skip write-level locking.
func isConcurrentSafeWriter(w io.Writer) bool {
	if w == io.Discard {
		return true
	}
	_, ok := w.(*os.File)
	return ok
}

// parallelBuf combines an entry and buffer for pool-friendly parallel formatting.
// Pooling them together reduces the parallel fallback from 4 pool
// operations (entry pool Get/Put + formatter buffer Get/Put) to 2.
type parallelBuf struct {
	buf   bytes.Buffer
	entry core.Entry
}

// ConsoleConfig holds configuration for console handler
type ConsoleConfig struct {
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// ConcurrentWriter indicates the Writer supports concurrent Write calls.
	// When true, the handler skips write-level locking for parallel log entries,
	// significantly improving parallel throughput. Automatically detected for
	// io.Discard and *os.File; set true for other goroutine-safe writers.
	ConcurrentWriter bool
}

// applyConsoleDefaults fills in zero-value fields with defaults.
func applyConsoleDefaults(cfg *ConsoleConfig) {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
}

// ConsoleHandler is a synchronous console handler. Used directly it writes
// on the caller's goroutine; wrapped by an async engine it is the append
// pipeline called from the consumer goroutine, where the TryLock fast path
// always succeeds.
type ConsoleHandler struct {
	writer          io.Writer
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	bufferFormatter formatter.BufferFormatter
	concurrentSafe  bool // true if writer is safe for concurrent Write calls
	stats           *handler.Stats
	mu              sync.Mutex // protects syncBuf, syncEntry and writer (single lock)
	lw              lockedWriter
	syncBuf         bytes.Buffer
	syncEntry       core.Entry
	parBufPool      sync.Pool // pool of *parallelBuf for contended writes
	closed          chan struct{}
}

// NewConsoleHandler creates a new console handler.
func NewConsoleHandler(cfg ConsoleConfig) *ConsoleHandler {
	applyConsoleDefaults(&cfg)

	h := &ConsoleHandler{
		writer:         cfg.Writer,
		formatter:      cfg.Formatter,
		concurrentSafe: cfg.ConcurrentWriter || isConcurrentSafeWriter(cfg.Writer),
		stats:          handler.NewStats(),
		closed:         make(chan struct{}),
	}

	// Cache WriterFormatter for zero-alloc path
	h.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)

	// Cache BufferFormatter for the handler-owned buffer path
	h.bufferFormatter, _ = cfg.Formatter.(formatter.BufferFormatter)

	// Pre-allocate lockedWriter for lock-minimal write path
	h.lw = lockedWriter{mu: &h.mu, w: h.writer}

	if h.bufferFormatter != nil {
		h.syncBuf.Grow(256)
		h.syncEntry.Fields = make([]core.Field, 0, 16)
		h.parBufPool = sync.Pool{
			New: func() interface{} {
				pb := &parallelBuf{}
				pb.buf.Grow(256)
				pb.entry.Fields = make([]core.Field, 0, 16)
				return pb
			},
		}
	}

	return h
}

// HandleLog processes log data directly without requiring a pooled Entry.
// Under no contention, uses handler-owned buffer for zero-alloc formatting.
// Under contention (parallel callers), uses a combined entry+buffer pool
// that formats outside the format lock for better parallel throughput.
func (h *ConsoleHandler) HandleLog(rec *core.Record) error {
	if h.bufferFormatter != nil {
		if h.mu.TryLock() {
			rec.CopyTo(&h.syncEntry)
			h.syncBuf.Reset()
			h.bufferFormatter.FormatEntry(&h.syncEntry, &h.syncBuf)
			// Write under mu: already held, serializes all writes.
			_, err := h.writer.Write(h.syncBuf.Bytes())
			h.mu.Unlock()
			if err == nil {
				h.stats.IncrementProcessed()
			}
			return err
		}

		pb := h.parBufPool.Get().(*parallelBuf)
		rec.CopyTo(&pb.entry)
		pb.buf.Reset()
		h.bufferFormatter.FormatEntry(&pb.entry, &pb.buf)
		err := h.writeParallel(pb.buf.Bytes())
		pb.entry.Reset()
		h.parBufPool.Put(pb)
		return err
	}

	// Fallback for non-BufferFormatter: pool entry + Handle
	entry := core.GetEntry()
	rec.CopyTo(entry)
	err := h.Handle(entry)
	core.PutEntry(entry)
	return err
}

// Handle formats and writes an entry.
func (h *ConsoleHandler) Handle(entry *core.Entry) error {
	return h.write(entry)
}

// write uses TryLock on mu to access the handler-owned buffer when
// uncontended (zero pool overhead). When contended and bufferFormatter is
// available, formats in a pooled buffer outside the lock, then writes
// under mu. Otherwise, falls through to writerFormatter or generic
// formatter paths.
func (h *ConsoleHandler) write(entry *core.Entry) error {
	if h.bufferFormatter != nil {
		if h.mu.TryLock() {
			h.syncBuf.Reset()
			h.bufferFormatter.FormatEntry(entry, &h.syncBuf)
			_, err := h.writer.Write(h.syncBuf.Bytes())
			h.mu.Unlock()
			if err == nil {
				h.stats.IncrementProcessed()
			}
			return err
		}

		pb := h.parBufPool.Get().(*parallelBuf)
		pb.buf.Reset()
		h.bufferFormatter.FormatEntry(entry, &pb.buf)
		err := h.writeParallel(pb.buf.Bytes())
		h.parBufPool.Put(pb)
		return err
	}

	if h.writerFormatter != nil {
		var err error
		if h.concurrentSafe {
			err = h.writerFormatter.FormatTo(entry, h.writer)
		} else {
			err = h.writerFormatter.FormatTo(entry, &h.lw)
		}
		if err == nil {
			h.stats.IncrementProcessed()
		}
		return err
	}

	data, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	return h.writeParallel(data)
}

// writeParallel writes pre-formatted data, locking only for writers that
// are not safe for concurrent use.
func (h *ConsoleHandler) writeParallel(data []byte) error {
	var err error
	if h.concurrentSafe {
		_, err = h.writer.Write(data)
	} else {
		h.mu.Lock()
		_, err = h.writer.Write(data)
		h.mu.Unlock()
	}
	if err == nil {
		h.stats.IncrementProcessed()
	}
	return err
}

// Stats returns a snapshot of the current statistics
func (h *ConsoleHandler) Stats() handler.Snapshot {
	return h.stats.GetSnapshot()
}

// Close closes the handler. The writer is not closed.
func (h *ConsoleHandler) Close() error {
	select {
	case <-h.closed:
		return nil // Already closed
	default:
		close(h.closed)
	}
	return nil
}

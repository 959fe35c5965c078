package filehandler

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/formatter"
	"github.com/philipp01105/asynclog/handler"
)

// ErrClosed is returned when writing to a closed handler.
var ErrClosed = errors.New("filehandler: handler closed")

// backupTimeFormat names rotated files. Sub-second precision keeps rapid
// size-based rotations from overwriting each other.
const backupTimeFormat = "2006-01-02T15-04-05.000000000"

// sizeTrackingWriter wraps an io.Writer and tracks total bytes written
type sizeTrackingWriter struct {
	w       io.Writer
	written int64
}

func (s *sizeTrackingWriter) Write(p []byte) (n int, err error) {
	n, err = s.w.Write(p)
	s.written += int64(n)
	return
}

func (s *sizeTrackingWriter) reset(w io.Writer) {
	s.w = w
	s.written = 0
}

// FileConfig holds configuration for file handler
type FileConfig struct {
	// Filename is the path to the log file
	Filename string
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// BufferSize is the size of the bufio.Writer in bytes (default: 4096)
	BufferSize int
	// ImmediateFlush flushes after every entry instead of at batch end
	ImmediateFlush bool
	// MaxSize is the maximum size in bytes before rotation (0 = no size rotation)
	MaxSize int64
	// MaxAge is the maximum age before rotation (0 = no time rotation)
	MaxAge time.Duration
	// MaxBackups is the maximum number of old log files to retain (0 = keep all)
	MaxBackups int
	// RotateInterval is the interval for time-based rotation (0 = no interval rotation)
	RotateInterval time.Duration
}

// applyFileDefaults fills in zero-value fields with defaults.
func applyFileDefaults(cfg *FileConfig) {
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 4096
	}
}

// FileHandler writes formatted entries to a file through a bufio.Writer.
// Output is flushed on Flush, on rotation and on Close; an async engine
// calls Flush at the end of every consumed batch.
type FileHandler struct {
	filename        string
	file            *os.File
	bufWriter       *bufio.Writer
	sizeWriter      *sizeTrackingWriter
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	bufferFormatter formatter.BufferFormatter
	mu              sync.Mutex
	syncBuf         bytes.Buffer
	syncEntry       core.Entry
	immediateFlush  bool
	maxSize         int64
	maxAge          time.Duration
	maxBackups      int
	rotateInterval  time.Duration
	currentSize     int64
	lastRotateTime  time.Time
	hasRotation     bool
	isClosed        bool
	stats           *handler.Stats
}

// NewFileHandler opens (or creates) the configured file and returns a
// handler appending to it.
func NewFileHandler(cfg FileConfig) (*FileHandler, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	applyFileDefaults(&cfg)

	// Create directory if it doesn't exist
	dir := filepath.Dir(cfg.Filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		if closeErr := file.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, err
	}

	sw := &sizeTrackingWriter{w: file}
	h := &FileHandler{
		filename:       cfg.Filename,
		file:           file,
		sizeWriter:     sw,
		bufWriter:      bufio.NewWriterSize(sw, cfg.BufferSize),
		formatter:      cfg.Formatter,
		immediateFlush: cfg.ImmediateFlush,
		maxSize:        cfg.MaxSize,
		maxAge:         cfg.MaxAge,
		maxBackups:     cfg.MaxBackups,
		rotateInterval: cfg.RotateInterval,
		currentSize:    info.Size(),
		lastRotateTime: time.Now(),
		hasRotation:    cfg.MaxSize > 0 || cfg.MaxAge > 0 || cfg.RotateInterval > 0,
		stats:          handler.NewStats(),
	}

	// Cache WriterFormatter for zero-alloc path
	h.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)

	// Cache BufferFormatter for the handler-owned buffer path
	h.bufferFormatter, _ = cfg.Formatter.(formatter.BufferFormatter)

	if h.bufferFormatter != nil {
		h.syncBuf.Grow(256)
		h.syncEntry.Fields = make([]core.Field, 0, 16)
	}
	return h, nil
}

// HandleLog processes log data directly without requiring a pooled Entry.
func (h *FileHandler) HandleLog(rec *core.Record) error {
	if h.bufferFormatter != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.isClosed {
			return ErrClosed
		}
		if err := h.rotateIfNeeded(); err != nil {
			return err
		}
		rec.CopyTo(&h.syncEntry)
		h.syncBuf.Reset()
		h.bufferFormatter.FormatEntry(&h.syncEntry, &h.syncBuf)
		return h.writeLocked(h.syncBuf.Bytes())
	}

	entry := core.GetEntry()
	rec.CopyTo(entry)
	err := h.Handle(entry)
	core.PutEntry(entry)
	return err
}

// Handle formats and writes an entry.
func (h *FileHandler) Handle(entry *core.Entry) error {
	// BufferFormatter fast path: format into handler-owned buffer, write to bufio.Writer.
	if h.bufferFormatter != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.isClosed {
			return ErrClosed
		}
		if err := h.rotateIfNeeded(); err != nil {
			return err
		}
		h.syncBuf.Reset()
		h.bufferFormatter.FormatEntry(entry, &h.syncBuf)
		return h.writeLocked(h.syncBuf.Bytes())
	}

	if h.writerFormatter != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.isClosed {
			return ErrClosed
		}
		if err := h.rotateIfNeeded(); err != nil {
			return err
		}

		prevFlushed := h.sizeWriter.written
		prevBuffered := h.bufWriter.Buffered()
		if err := h.writerFormatter.FormatTo(entry, h.bufWriter); err != nil {
			return err
		}
		h.currentSize += (h.sizeWriter.written - prevFlushed) + int64(h.bufWriter.Buffered()-prevBuffered)
		h.stats.IncrementProcessed()
		if h.immediateFlush {
			return h.bufWriter.Flush()
		}
		return nil
	}

	data, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.isClosed {
		return ErrClosed
	}
	if err := h.rotateIfNeeded(); err != nil {
		return err
	}
	return h.writeLocked(data)
}

// writeLocked writes formatted bytes. Caller holds mu.
func (h *FileHandler) writeLocked(data []byte) error {
	n, err := h.bufWriter.Write(data)
	if err != nil {
		return err
	}
	h.currentSize += int64(n)
	h.stats.IncrementProcessed()
	if h.immediateFlush {
		return h.bufWriter.Flush()
	}
	return nil
}

// Flush writes any buffered data to the file.
func (h *FileHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.isClosed {
		return nil
	}
	return h.bufWriter.Flush()
}

// rotateIfNeeded checks and performs rotation if needed
func (h *FileHandler) rotateIfNeeded() error {
	if !h.hasRotation {
		return nil
	}

	needRotate := false

	// Check size-based rotation
	if h.maxSize > 0 && h.currentSize >= h.maxSize {
		needRotate = true
	}

	// Check time-based rotation (by age)
	if h.maxAge > 0 && time.Since(h.lastRotateTime) >= h.maxAge {
		needRotate = true
	}

	// Check interval-based rotation
	if h.rotateInterval > 0 && time.Since(h.lastRotateTime) >= h.rotateInterval {
		needRotate = true
	}

	if !needRotate {
		return nil
	}

	return h.rotate()
}

// rotate performs the actual file rotation
func (h *FileHandler) rotate() error {
	// Flush buffered writer, sync and close current file
	if err := h.bufWriter.Flush(); err != nil {
		return err
	}
	if err := h.file.Sync(); err != nil {
		return err
	}
	if err := h.file.Close(); err != nil {
		return err
	}

	rotatedName := fmt.Sprintf("%s.%s", h.filename, time.Now().Format(backupTimeFormat))

	if err := os.Rename(h.filename, rotatedName); err != nil {
		// If rename fails, try to reopen the original file
		file, openErr := os.OpenFile(h.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if openErr != nil {
			return fmt.Errorf("rotation failed: %v, reopen failed: %v", err, openErr)
		}
		h.file = file
		h.sizeWriter.reset(file)
		h.bufWriter.Reset(h.sizeWriter)
		return err
	}

	if h.maxBackups > 0 {
		h.cleanupOldBackups()
	}

	file, err := os.OpenFile(h.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	h.file = file
	h.sizeWriter.reset(file)
	h.bufWriter.Reset(h.sizeWriter)
	h.currentSize = 0
	h.lastRotateTime = time.Now()

	return nil
}

// backups returns rotated files for this handler, oldest first.
func (h *FileHandler) backups() []string {
	dir := filepath.Dir(h.filename)
	base := filepath.Base(h.filename)

	matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return nil
	}

	var backups []string
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), base+".") {
			backups = append(backups, match)
		}
	}

	// The timestamp suffix sorts lexically in creation order.
	sort.Strings(backups)
	return backups
}

// cleanupOldBackups removes old backup files based on MaxBackups
func (h *FileHandler) cleanupOldBackups() {
	backups := h.backups()
	if len(backups) <= h.maxBackups {
		return
	}
	for _, file := range backups[:len(backups)-h.maxBackups] {
		if err := os.Remove(file); err != nil {
			return
		}
	}
}

// Stats returns a snapshot of the current statistics
func (h *FileHandler) Stats() handler.Snapshot {
	return h.stats.GetSnapshot()
}

// Close flushes, syncs and closes the underlying file. Subsequent writes
// return ErrClosed.
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.isClosed {
		return nil
	}
	h.isClosed = true

	if err := h.bufWriter.Flush(); err != nil {
		h.file.Close()
		return err
	}
	if err := h.file.Sync(); err != nil {
		h.file.Close()
		return err
	}
	return h.file.Close()
}

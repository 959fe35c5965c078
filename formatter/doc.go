// Package formatter defines how log entries are serialized into bytes.
//
// It exposes three interfaces: Formatter, which returns a []byte,
// WriterFormatter, which writes directly to an io.Writer, and
// BufferFormatter, which appends into a caller-owned bytes.Buffer.
// Handlers check for the optional interfaces at construction time and
// prefer the cheapest one available.
//
// Both built-in formatters (TextFormatter and JSONFormatter) implement
// all three. They render the logger name, the thread name and the
// ambient context data captured with the entry; the JSON formatter nests
// context data under a "context" object so it never collides with call
// fields. They rely on Go's Append-style functions (time.AppendFormat,
// strconv.AppendInt) to avoid per-call allocations, and the TextFormatter
// pre-computes level bracket strings (" [INFO] ", etc.).
//
// Buffers larger than 64 KiB are not returned to the pool to prevent
// a single large log line from permanently inflating memory usage.
package formatter

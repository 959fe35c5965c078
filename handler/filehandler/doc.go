// Package filehandler provides a buffered file handler with automatic
// rotation by size, age, or interval.
//
// FileHandler buffers output in a bufio.Writer. Call Flush (or let an
// async engine call it at the end of each batch) to push buffered bytes
// to the file; Close flushes and syncs.
package filehandler

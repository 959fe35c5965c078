// Package consolehandler provides a synchronous handler that writes
// formatted log entries to any io.Writer (default: os.Stdout).
//
// ConsoleHandler formats into a handler-owned buffer when uncontended and
// falls back to pooled entry+buffer pairs when several goroutines write at
// once. Wrap it in an async engine to move formatting and I/O off the
// caller's goroutine.
package consolehandler

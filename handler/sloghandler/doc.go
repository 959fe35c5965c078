// Package sloghandler provides an adapter from handler.Handler to
// log/slog.Handler, allowing the logging framework to serve as a
// drop-in backend for the standard library's structured logging.
package sloghandler

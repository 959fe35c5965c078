// Package multihandler provides a fan-out handler that dispatches log
// entries to multiple child handlers. Every child is always called; errors
// from the children are combined with multierr.
package multihandler

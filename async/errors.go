package async

import "errors"

var (
	// ErrNotStarted is returned to producers when the engine is not
	// accepting events. The Gateway reacts by appending synchronously.
	ErrNotStarted = errors.New("async: engine not started")
	// ErrShutdownTimeout is returned by Stop when the drain deadline
	// expired before every buffered event was appended.
	ErrShutdownTimeout = errors.New("async: shutdown timed out")
	// ErrSyncTimeout is returned by Sync when the consumer did not catch
	// up in time.
	ErrSyncTimeout = errors.New("async: sync timed out")
	// ErrAppenderBusy is returned when closing the append pipeline while
	// the consumer of an aborted drain is still inside it. The close runs
	// once that consumer returns.
	ErrAppenderBusy = errors.New("async: appender busy, close deferred")
	// ErrConsumerBusy is returned by Start when the consumer of the
	// previous run has not returned yet.
	ErrConsumerBusy = errors.New("async: previous consumer still running")

	// errDropped and errBypass are producer outcomes handled by the
	// Gateway; they never leave the package.
	errDropped = errors.New("async: event dropped")
	errBypass  = errors.New("async: append synchronously")
)

package async

import (
	"fmt"
	"time"

	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/internal/status"
	"github.com/philipp01105/asynclog/ring"
)

const (
	// DefaultRingBufferSize is the slot count used when none is configured.
	DefaultRingBufferSize = 256 * 1024
	// DefaultShutdownTimeout bounds Stop when no timeout is configured.
	DefaultShutdownTimeout = 5 * time.Second
	// DefaultBatchLimit caps how many events the consumer appends before
	// flushing.
	DefaultBatchLimit = 1024
)

// Options configure an Engine.
type Options struct {
	// Name identifies the engine in admin snapshots and status reports.
	Name string
	// RingBufferSize is the number of slots; must be a power of two.
	RingBufferSize int
	// Policy applies when the ring buffer is full.
	Policy Policy
	// DiscardThreshold is the most severe level PolicyDiscard drops; more
	// severe events wait for a slot. The default, PanicLevel, drops every
	// level.
	DiscardThreshold core.Level
	// ShutdownTimeout bounds how long Stop waits for the drain. Zero
	// means wait for the caller's context only.
	ShutdownTimeout time.Duration
	// WaitStrategy selects how the idle consumer waits.
	WaitStrategy WaitStrategy
	// BatchLimit caps the events appended between flushes.
	BatchLimit int
	// Status receives diagnostics. Nil uses status.Default.
	Status *status.Logger
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		RingBufferSize:   DefaultRingBufferSize,
		Policy:           PolicyEnqueue,
		DiscardThreshold: core.PanicLevel,
		ShutdownTimeout:  DefaultShutdownTimeout,
		WaitStrategy:     WaitProgressive,
		BatchLimit:       DefaultBatchLimit,
	}
}

// withDefaults fills zero values that have no meaningful zero behavior.
func (o Options) withDefaults() Options {
	if o.RingBufferSize == 0 {
		o.RingBufferSize = DefaultRingBufferSize
	}
	if o.BatchLimit <= 0 {
		o.BatchLimit = DefaultBatchLimit
	}
	if o.Status == nil {
		o.Status = status.Default()
	}
	return o
}

// Validate reports configuration errors.
func (o Options) Validate() error {
	if o.RingBufferSize != 0 && !ring.IsPowerOfTwo(o.RingBufferSize) {
		return fmt.Errorf("async: ring buffer size %d: %w", o.RingBufferSize, ring.ErrCapacity)
	}
	if o.Policy > PolicySynchronous {
		return fmt.Errorf("async: unknown full-buffer policy %d", o.Policy)
	}
	if o.WaitStrategy > WaitSleep {
		return fmt.Errorf("async: unknown wait strategy %d", o.WaitStrategy)
	}
	if o.ShutdownTimeout < 0 {
		return fmt.Errorf("async: negative shutdown timeout %s", o.ShutdownTimeout)
	}
	return nil
}

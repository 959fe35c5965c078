package async

import "github.com/philipp01105/asynclog/handler"

// RingBufferAdmin is a point-in-time view of an engine's ring buffer. It
// is computed from atomics only and may be momentarily stale.
type RingBufferAdmin struct {
	Name string
	// Capacity is the number of slots.
	Capacity int64
	// RemainingCapacity is the number of slots free to claim.
	RemainingCapacity int64
	// BufferSize is the number of events claimed but not yet consumed.
	BufferSize int64
	State      State
	Stats      handler.Snapshot
}

// Admin returns the current ring buffer snapshot. Before the first Start
// it reports the configured capacity as entirely free.
func (e *Engine) Admin() RingBufferAdmin {
	a := RingBufferAdmin{
		State: e.state.Load(),
		Stats: e.stats.GetSnapshot(),
	}
	if r := e.run.Load(); r != nil {
		a.Name = r.opts.Name
		a.Capacity = r.buf.Cap()
		a.BufferSize = r.buf.Size()
		a.RemainingCapacity = a.Capacity - a.BufferSize
		return a
	}
	opts := e.Options()
	a.Name = opts.Name
	a.Capacity = int64(opts.RingBufferSize)
	a.RemainingCapacity = a.Capacity
	return a
}

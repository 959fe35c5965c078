package handler

import (
	"sync/atomic"

	"github.com/philipp01105/asynclog/core"
)

// Stats tracks handler and engine statistics. All methods are safe for
// concurrent use.
type Stats struct {
	// Separate atomic counters per level
	DroppedDebug uint64
	DroppedInfo  uint64
	DroppedWarn  uint64
	DroppedError uint64
	// BlockedTotal counts events whose producer waited for a free slot
	BlockedTotal uint64
	// ProcessedTotal counts total processed logs
	ProcessedTotal uint64
	// SyncTotal counts events written on the caller's goroutine instead of
	// being handed off
	SyncTotal uint64
	// TranslateErrors counts events that could not be copied into the buffer
	TranslateErrors uint64
	// AppendErrors counts events the downstream handler failed to write
	AppendErrors uint64
	// LostTotal counts events still buffered when a drain deadline expired
	LostTotal uint64
}

// NewStats creates a new Stats instance
func NewStats() *Stats {
	return &Stats{}
}

// IncrementDropped atomically increments the dropped counter for a level.
// Levels above Error are counted as Error.
func (s *Stats) IncrementDropped(level core.Level) {
	switch level {
	case core.DebugLevel:
		atomic.AddUint64(&s.DroppedDebug, 1)
	case core.InfoLevel:
		atomic.AddUint64(&s.DroppedInfo, 1)
	case core.WarnLevel:
		atomic.AddUint64(&s.DroppedWarn, 1)
	default:
		atomic.AddUint64(&s.DroppedError, 1)
	}
}

// IncrementBlocked atomically increments the blocked counter
func (s *Stats) IncrementBlocked() {
	atomic.AddUint64(&s.BlockedTotal, 1)
}

// IncrementProcessed atomically increments the processed counter
func (s *Stats) IncrementProcessed() {
	atomic.AddUint64(&s.ProcessedTotal, 1)
}

// IncrementSync atomically increments the synchronous write counter
func (s *Stats) IncrementSync() {
	atomic.AddUint64(&s.SyncTotal, 1)
}

// IncrementTranslateErrors atomically increments the translation error counter
func (s *Stats) IncrementTranslateErrors() {
	atomic.AddUint64(&s.TranslateErrors, 1)
}

// IncrementAppendErrors atomically increments the append error counter
func (s *Stats) IncrementAppendErrors() {
	atomic.AddUint64(&s.AppendErrors, 1)
}

// AddLost atomically adds n to the lost counter
func (s *Stats) AddLost(n uint64) {
	atomic.AddUint64(&s.LostTotal, n)
}

// GetDropped returns the dropped count for a level
func (s *Stats) GetDropped(level core.Level) uint64 {
	switch level {
	case core.DebugLevel:
		return atomic.LoadUint64(&s.DroppedDebug)
	case core.InfoLevel:
		return atomic.LoadUint64(&s.DroppedInfo)
	case core.WarnLevel:
		return atomic.LoadUint64(&s.DroppedWarn)
	case core.ErrorLevel:
		return atomic.LoadUint64(&s.DroppedError)
	default:
		return 0
	}
}

// GetBlocked returns the blocked count
func (s *Stats) GetBlocked() uint64 {
	return atomic.LoadUint64(&s.BlockedTotal)
}

// GetProcessed returns the processed count
func (s *Stats) GetProcessed() uint64 {
	return atomic.LoadUint64(&s.ProcessedTotal)
}

// GetTotalDropped returns the total dropped across all levels
func (s *Stats) GetTotalDropped() uint64 {
	return atomic.LoadUint64(&s.DroppedDebug) +
		atomic.LoadUint64(&s.DroppedInfo) +
		atomic.LoadUint64(&s.DroppedWarn) +
		atomic.LoadUint64(&s.DroppedError)
}

// Reset resets all counters to zero
func (s *Stats) Reset() {
	atomic.StoreUint64(&s.DroppedDebug, 0)
	atomic.StoreUint64(&s.DroppedInfo, 0)
	atomic.StoreUint64(&s.DroppedWarn, 0)
	atomic.StoreUint64(&s.DroppedError, 0)
	atomic.StoreUint64(&s.BlockedTotal, 0)
	atomic.StoreUint64(&s.ProcessedTotal, 0)
	atomic.StoreUint64(&s.SyncTotal, 0)
	atomic.StoreUint64(&s.TranslateErrors, 0)
	atomic.StoreUint64(&s.AppendErrors, 0)
	atomic.StoreUint64(&s.LostTotal, 0)
}

// Snapshot is a point-in-time copy of Stats
type Snapshot struct {
	DroppedTotal    map[core.Level]uint64
	BlockedTotal    uint64
	ProcessedTotal  uint64
	SyncTotal       uint64
	TranslateErrors uint64
	AppendErrors    uint64
	LostTotal       uint64
}

// Dropped returns the number of dropped events across all levels.
func (s Snapshot) Dropped() uint64 {
	var n uint64
	for _, v := range s.DroppedTotal {
		n += v
	}
	return n
}

// GetSnapshot returns a snapshot of current statistics
func (s *Stats) GetSnapshot() Snapshot {
	return Snapshot{
		DroppedTotal: map[core.Level]uint64{
			core.DebugLevel: s.GetDropped(core.DebugLevel),
			core.InfoLevel:  s.GetDropped(core.InfoLevel),
			core.WarnLevel:  s.GetDropped(core.WarnLevel),
			core.ErrorLevel: s.GetDropped(core.ErrorLevel),
		},
		BlockedTotal:    s.GetBlocked(),
		ProcessedTotal:  s.GetProcessed(),
		SyncTotal:       atomic.LoadUint64(&s.SyncTotal),
		TranslateErrors: atomic.LoadUint64(&s.TranslateErrors),
		AppendErrors:    atomic.LoadUint64(&s.AppendErrors),
		LostTotal:       atomic.LoadUint64(&s.LostTotal),
	}
}

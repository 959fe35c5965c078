package ring

import (
	"errors"
	"runtime"
	"sync/atomic"
	"time"
)

const (
	// cacheLineSize keeps the cursors on separate cache lines.
	cacheLineSize = 64

	spinLimit       = 8
	maxBackoffShift = 10
)

var (
	// ErrCapacity is returned by New for a capacity that is not a positive
	// power of two.
	ErrCapacity = errors.New("ring: capacity must be a positive power of two")
	// ErrClosed is returned by Claim when its done channel closes before a
	// slot became free.
	ErrClosed = errors.New("ring: claim abandoned")
)

// Buffer is a fixed-capacity circular array of T with one producer cursor
// (claimed) and one consumer cursor (consumed).
//
// Any number of goroutines may claim and publish; only one goroutine may
// call NextToConsume, HighestPublished and MarkConsumed.
type Buffer[T any] struct {
	_        [cacheLineSize]byte
	claimed  atomic.Int64 // next sequence handed to a producer
	_        [cacheLineSize - 8]byte
	consumed atomic.Int64 // next sequence the consumer will read
	_        [cacheLineSize - 8]byte

	mask      int64
	slots     []T
	published []atomic.Int64 // seq+1 once the slot for seq is published
}

// New allocates a buffer with capacity slots, each initialized by init if
// it is non-nil.
func New[T any](capacity int, init func(*T)) (*Buffer[T], error) {
	if !IsPowerOfTwo(capacity) {
		return nil, ErrCapacity
	}
	b := &Buffer[T]{
		mask:      int64(capacity - 1),
		slots:     make([]T, capacity),
		published: make([]atomic.Int64, capacity),
	}
	if init != nil {
		for i := range b.slots {
			init(&b.slots[i])
		}
	}
	return b, nil
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Cap returns the number of slots.
func (b *Buffer[T]) Cap() int64 {
	return b.mask + 1
}

// Cursor returns the next sequence that will be claimed.
func (b *Buffer[T]) Cursor() int64 {
	return b.claimed.Load()
}

// Consumed returns the next sequence the consumer will read; every
// sequence below it has been consumed.
func (b *Buffer[T]) Consumed() int64 {
	return b.consumed.Load()
}

// Size returns the number of claimed but not yet consumed slots. The value
// may be momentarily stale.
func (b *Buffer[T]) Size() int64 {
	consumed := b.consumed.Load()
	n := b.claimed.Load() - consumed
	if n < 0 {
		return 0
	}
	if n > b.Cap() {
		return b.Cap()
	}
	return n
}

// Remaining returns the number of slots that can currently be claimed.
func (b *Buffer[T]) Remaining() int64 {
	return b.Cap() - b.Size()
}

// TryClaim reserves the next free sequence. It returns false without
// blocking when the buffer is full.
func (b *Buffer[T]) TryClaim() (int64, bool) {
	retries := 0
	for {
		claimed := b.claimed.Load()
		if claimed-b.consumed.Load() >= b.Cap() {
			return 0, false
		}
		if b.claimed.CompareAndSwap(claimed, claimed+1) {
			return claimed, true
		}
		// another producer won the sequence
		backoff(&retries)
	}
}

// Claim reserves the next free sequence, waiting for the consumer to free
// a slot when the buffer is full. It returns ErrClosed if done is closed
// before a slot frees. waited reports whether the buffer was full at least
// once.
func (b *Buffer[T]) Claim(done <-chan struct{}) (seq int64, waited bool, err error) {
	retries := 0
	for {
		if seq, ok := b.TryClaim(); ok {
			return seq, waited, nil
		}
		waited = true
		select {
		case <-done:
			return 0, waited, ErrClosed
		default:
		}
		backoff(&retries)
	}
}

// Slot returns the slot for seq. The caller must hold the claim on seq,
// either as the producer before Publish or as the consumer before
// MarkConsumed.
func (b *Buffer[T]) Slot(seq int64) *T {
	return &b.slots[seq&b.mask]
}

// Publish makes the slot for seq visible to the consumer.
func (b *Buffer[T]) Publish(seq int64) {
	b.published[seq&b.mask].Store(seq + 1)
}

// IsPublished reports whether seq has been published and not yet
// overwritten by a later claim.
func (b *Buffer[T]) IsPublished(seq int64) bool {
	return b.published[seq&b.mask].Load() == seq+1
}

// NextToConsume returns the next unconsumed sequence once it has been
// published. ok is false when nothing is ready.
func (b *Buffer[T]) NextToConsume() (seq int64, ok bool) {
	seq = b.consumed.Load()
	if seq >= b.claimed.Load() || !b.IsPublished(seq) {
		return seq, false
	}
	return seq, true
}

// HighestPublished returns the highest sequence h >= from-1 such that
// every sequence in [from, h] is published, looking at most limit
// sequences ahead. A result of from-1 means from itself is not published.
func (b *Buffer[T]) HighestPublished(from, limit int64) int64 {
	end := b.claimed.Load()
	if limit > 0 && end-from > limit {
		end = from + limit
	}
	seq := from
	for ; seq < end; seq++ {
		if !b.IsPublished(seq) {
			break
		}
	}
	return seq - 1
}

// MarkConsumed releases every sequence up to and including seq back to
// the producers.
func (b *Buffer[T]) MarkConsumed(seq int64) {
	b.consumed.Store(seq + 1)
}

// backoff yields for the first few attempts, then sleeps with an
// exponentially growing delay capped at roughly a millisecond.
func backoff(retries *int) {
	if *retries < spinLimit {
		runtime.Gosched()
		*retries++
		return
	}
	shift := *retries - spinLimit
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	time.Sleep(time.Microsecond << shift)
	*retries++
}

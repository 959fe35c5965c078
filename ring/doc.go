// Package ring implements the bounded, pre-allocated multi-producer /
// single-consumer ring buffer that carries log events from application
// goroutines to the consumer goroutine of an asynchronous engine.
//
// A Buffer holds a fixed, power-of-two number of slots. Ownership of a
// slot moves through three phases:
//
//   - claim: a producer reserves the next sequence with TryClaim or Claim.
//     Claims never run further ahead than Cap sequences past the consumer,
//     so unconsumed slots can not be overwritten.
//   - publish: the producer writes the slot obtained from Slot and calls
//     Publish. The per-slot publish marker is stored atomically after the
//     slot writes, so the consumer never observes a half-written slot.
//   - consume: the single consumer reads NextToConsume (or a batch up to
//     HighestPublished), processes the slot, then calls MarkConsumed, which
//     makes the slot claimable again at sequence+Cap.
//
// The cursors are the only shared mutable state; slot contents are only
// touched by whichever side holds the claim.
package ring

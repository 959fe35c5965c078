// Package async moves log appends off the caller's goroutine.
//
// An Engine owns a pre-allocated ring buffer shared by every logger that
// uses its Gateway, and one consumer goroutine that drains the buffer
// into a handler.Handler. Producers claim a slot, copy the event into it
// and publish it; the consumer appends events in sequence order, flushes
// at the end of each batch and marks slots consumed.
//
// What happens when the buffer is full is a Policy:
//
//   - PolicyEnqueue (default) blocks until the consumer frees a slot.
//   - PolicyDiscard drops the event. Lowering Options.DiscardThreshold
//     makes more severe events wait for a slot instead.
//   - PolicySynchronous appends on the caller's goroutine.
//
// Before Start and after Stop the Gateway appends synchronously, so no
// event is lost while the engine is down. Stop drains the buffer within
// a deadline and reports how many events it had to abandon.
//
// Failures inside the pipeline never reach the caller: translation and
// append errors are counted in Stats and reported through the status
// logger.
package async

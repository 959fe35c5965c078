package async

import (
	"fmt"

	"github.com/philipp01105/asynclog/core"
)

// event is a ring buffer slot. It is written by exactly one producer
// between claim and publish, and read by the consumer between
// NextToConsume and MarkConsumed.
type event struct {
	core.Entry
	// discard marks a slot whose translation failed. The consumer skips it.
	discard bool
}

func initEvent(ev *event) {
	ev.Fields = make([]core.Field, 0, 8)
}

// translate copies rec into the slot. Values implementing
// core.Snapshotter are snapshotted on the calling goroutine, so the slot
// never references data the caller may still mutate.
func translate(ev *event, rec *core.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ev.discard = true
			err = fmt.Errorf("async: translate: %v", r)
		}
	}()
	ev.discard = false
	rec.CopyTo(&ev.Entry)
	return nil
}

// release drops references held by a consumed slot while keeping the
// capacity of its slices.
func (ev *event) release() {
	ev.Entry.Reset()
	ev.discard = false
}

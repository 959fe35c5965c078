package core

import (
	"sync"
	"time"
)

// Record carries the transient arguments of a single log call, as seen by
// a FastHandler. None of its slices may be retained after HandleLog
// returns: handlers copy what they need.
type Record struct {
	Time         time.Time
	Level        Level
	LoggerName   string
	ThreadName   string
	Message      string
	LoggerFields []Field
	CallFields   []Field
	ContextData  []Field
	Caller       CallerInfo
}

// FromEntry fills the record from an entry without copying slices.
func (r *Record) FromEntry(e *Entry) {
	r.Time = e.Time
	r.Level = e.Level
	r.LoggerName = e.LoggerName
	r.ThreadName = e.ThreadName
	r.Message = e.Message
	r.LoggerFields = nil
	r.CallFields = e.Fields
	r.ContextData = e.ContextData
	r.Caller = e.Caller
}

// CopyTo copies the record into e, reusing e's slice capacity. Fields of
// AnyType whose value implements Snapshotter are snapshotted, so the entry
// does not share mutable state with the caller.
func (r *Record) CopyTo(e *Entry) {
	e.Time = r.Time
	e.Level = r.Level
	e.LoggerName = r.LoggerName
	e.ThreadName = r.ThreadName
	e.Message = r.Message
	e.Caller = r.Caller

	e.Fields = e.Fields[:0]
	e.Fields = AppendSnapshot(e.Fields, r.LoggerFields)
	e.Fields = AppendSnapshot(e.Fields, r.CallFields)

	e.ContextData = e.ContextData[:0]
	e.ContextData = AppendSnapshot(e.ContextData, r.ContextData)
}

var recordPool = sync.Pool{
	New: func() interface{} {
		return &Record{CallFields: make([]Field, 0, 8)}
	},
}

// GetRecord returns a cleared Record from the pool.
func GetRecord() *Record {
	return recordPool.Get().(*Record)
}

// PutRecord clears r and returns it to the pool.
func PutRecord(r *Record) {
	clear(r.CallFields)
	*r = Record{CallFields: r.CallFields[:0]}
	recordPool.Put(r)
}

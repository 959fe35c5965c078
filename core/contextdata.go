package core

import "context"

type contextDataKey struct{}

type threadNameKey struct{}

// Snapshotter is implemented by values that are mutable after the log call.
// Asynchronous handlers call LogSnapshot on the caller's goroutine and log
// the returned value instead of the live one.
type Snapshotter interface {
	LogSnapshot() any
}

// WithContextData returns a context carrying fields as ambient log data.
// Fields already present on ctx are kept; a key set again is shadowed by
// the newer value when rendered.
func WithContextData(ctx context.Context, fields ...Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	prev := ContextData(ctx)
	merged := make([]Field, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, contextDataKey{}, merged)
}

// ContextData returns the ambient log data carried by ctx. The returned
// slice must not be modified.
func ContextData(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextDataKey{}).([]Field)
	return fields
}

// WithThreadName names the logical thread of execution (request, worker,
// job) that ctx belongs to.
func WithThreadName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, threadNameKey{}, name)
}

// ThreadName returns the name set with WithThreadName, or "".
func ThreadName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(threadNameKey{}).(string)
	return name
}

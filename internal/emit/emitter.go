// Package emit provides pluggable observability for workflow execution,
// grounded on the teacher's graph/emit package. Implementations must be
// non-blocking and safe for concurrent use, since callers may emit from
// several goroutines at once.
package emit

import "context"

// Emitter receives observability events about plan and workflow
// execution. cmd/workgraph emits the workflow started, error, and
// finished events; the core packages do not emit themselves.
type Emitter interface {
	// Emit sends a single event. Must not block or panic; implementations
	// that need durability should buffer and flush asynchronously.
	Emit(event Event)

	// EmitBatch sends multiple events, preserving order. Returns an error
	// only on catastrophic failure (e.g. a misconfigured backend) — partial
	// per-event failures should be logged, not returned.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until all buffered events are delivered or ctx expires.
	// Safe to call multiple times.
	Flush(ctx context.Context) error
}

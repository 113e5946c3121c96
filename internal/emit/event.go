package emit

// Event is one observability event emitted during plan or workflow
// execution. Grounded on the teacher's emit.Event (graph/emit/event.go),
// retargeted from (run_id, step, node_id) to (workflow_id, task_id) —
// the core's own execution keys (§4.5, §4.6).
type Event struct {
	// WorkflowID identifies the workflow run that emitted this event.
	WorkflowID string

	// TaskID identifies which task emitted this event. Empty for
	// workflow-level events (started, completed, error).
	TaskID string

	// Msg is a short event name: "task_start", "task_retry", "task_blocked",
	// "workflow_completed", and so on.
	Msg string

	// Meta carries event-specific structured data, e.g. "duration_ms",
	// "attempt", "error", "checkpoint_id".
	Meta map[string]any
}

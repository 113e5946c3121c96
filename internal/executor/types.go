// Package executor runs a planner.WorkflowPlan concurrently with bounded
// parallelism, exponential-backoff retries, and failure propagation to
// blocked successors (§4.5). Scheduling is grounded directly on the
// teacher's Frontier[S]/runConcurrent admission loop (graph/scheduler.go),
// generalized from a single shared state snapshot per work item to a
// per-task TaskState threaded through a shared WorkflowState map.
package executor

import "time"

// TaskStatus is the closed enumeration of per-task lifecycle states (§3).
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusSucceeded TaskStatus = "succeeded"
	StatusFailed    TaskStatus = "failed"
	StatusSkipped   TaskStatus = "skipped"
	StatusBlocked   TaskStatus = "blocked"
)

// WorkflowStatus is the closed enumeration of workflow-level lifecycle
// states (§3).
type WorkflowStatus string

const (
	WorkflowRunning        WorkflowStatus = "running"
	WorkflowCompleted      WorkflowStatus = "completed"
	WorkflowFailed         WorkflowStatus = "failed"
	WorkflowError          WorkflowStatus = "error"
	WorkflowPartialFailure WorkflowStatus = "partial_failure"
)

// Artifact is a write-once payload produced by a task, keyed by
// (workflow_id, task_id, creation_time) (§3 Lifecycles).
type Artifact struct {
	ID         string    `json:"id"`
	WorkflowID string    `json:"workflow_id"`
	TaskID     string    `json:"task_id"`
	CreatedAt  time.Time `json:"created_at"`
	Data       any       `json:"data"`
}

// TaskState is the per-task execution record (§3).
type TaskState struct {
	ID           string     `json:"id"`
	Status       TaskStatus `json:"status"`
	Dependencies []string   `json:"dependencies"`
	Retries      int        `json:"retries"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DurationS    *float64   `json:"duration_s,omitempty"`
	Output       any        `json:"output,omitempty"`
	Error        string     `json:"error,omitempty"`
	Artifacts    []Artifact `json:"artifacts,omitempty"`
}

// WorkflowState is the full execution record for a plan run (§3).
type WorkflowState struct {
	ID          string                  `json:"id"`
	PlanID      string                  `json:"plan_id,omitempty"`
	Goal        string                  `json:"goal"`
	Status      WorkflowStatus          `json:"status"`
	StartedAt   time.Time               `json:"started_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	DurationS   *float64                `json:"duration_s,omitempty"`
	Tasks       map[string]*TaskState   `json:"tasks"`
	Artifacts   []Artifact              `json:"artifacts,omitempty"`
	Error       string                  `json:"error,omitempty"`
	ResumedAt   *time.Time              `json:"resumed_at,omitempty"`
	Checkpoints []string                `json:"checkpoints,omitempty"`
}

// RetryPolicy configures per-task retry/backoff behavior (§4.5).
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelayS     float64
	ExponentialBase float64
	MaxDelayS      float64
	Jitter         bool
}

// DefaultRetryPolicy mirrors §4.5's defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelayS: 1.0, ExponentialBase: 2.0, MaxDelayS: 30.0}
}

// Options configures an Executor run.
type Options struct {
	MaxParallel int
	Retry       RetryPolicy
	// TaskFunc, if set, overrides the built-in per-type dispatcher — the
	// tested surface of §4.5 "Task invocation".
	TaskFunc func(task TaskRequest) (TaskResult, error)
}

// DefaultOptions mirrors §4.5's defaults (max_parallel=3).
func DefaultOptions() Options {
	return Options{MaxParallel: 3, Retry: DefaultRetryPolicy()}
}

// TaskRequest is what the Executor hands to a task function or the
// built-in dispatcher for one attempt.
type TaskRequest struct {
	TaskID      string
	Type        string
	Name        string
	Description string
	Tool        string
	Model       string
	Prompt      string
	Parameters  map[string]any
	Attempt     int

	// MaxExecutionTimeS, if positive, bounds a single attempt's duration
	// (§4.5 Cancellation & timeouts: "a per-task max-execution-time may
	// be provided; overshoot is a task-level failure, counts as an
	// attempt"). Zero means unlimited.
	MaxExecutionTimeS float64
}

// TaskResult is what a task function or dispatcher returns for one attempt.
type TaskResult struct {
	Output    any
	Artifacts []any
}

// Package planner turns a goal into a typed, budget-aware task DAG (§4.4).
// Seeding and step ordering are grounded on the graphstore's Neighbors/
// AllNodes surface; cycle detection follows the teacher's acyclic-graph
// validation discipline (graph/engine.go's routing/visited bookkeeping),
// generalized from branch-predicate edges to a fixed dependency list.
package planner

import "time"

// TaskType is the closed enumeration of planned-task kinds (§3 WorkflowTask).
type TaskType string

const (
	TaskRetrieval    TaskType = "retrieval"
	TaskReasoning    TaskType = "reasoning"
	TaskComputation  TaskType = "computation"
	TaskVerification TaskType = "verification"
	TaskSynthesis    TaskType = "synthesis"
)

// WorkflowTask is one node of a WorkflowPlan's task DAG (§3).
type WorkflowTask struct {
	ID               string
	Type             TaskType
	Name             string
	Description      string
	Dependencies     []string
	Tool             string
	Model            string
	Prompt           string
	Parameters       map[string]any
	EstimatedTokens  int
	EstimatedTimeS   float64
	RequiresApproval bool
	Checkpoint       bool

	// MaxExecutionTimeS, if positive, is the per-task wall-clock budget
	// the Executor enforces on each attempt (§4.5 Cancellation &
	// timeouts). Unset tasks run unbounded.
	MaxExecutionTimeS float64
}

// TaskEdge is a (src, dst) dependency-order pair, a subset of the
// dependency relation on Tasks (§3 WorkflowPlan invariant).
type TaskEdge struct {
	Src string
	Dst string
}

// WorkflowPlan is the output of the five-phase planning pipeline (§4.4).
type WorkflowPlan struct {
	ID                   string
	Goal                 string
	ProcedureID          string
	Tasks                []WorkflowTask
	Edges                []TaskEdge
	TotalEstimatedTokens int
	TotalEstimatedTimeS  float64
	Checkpoints          []string
	CreatedAt            time.Time
}

// Validation limits (§4.4 Validation).
const (
	MaxTasks = 20
	MaxTokens = 50_000
	MaxTimeS  = 300

	// missingStepNumber is the sort key used when a Step node has no
	// step_number property (§4.4 phase 2: "missing -> 999").
	missingStepNumber = 999
)

// ValidationResult is the outcome of validating a WorkflowPlan.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

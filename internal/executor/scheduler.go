package executor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/workgraph/engine/internal/planner"
)

// StateStore is the narrow collaborator the Executor persists through
// after every task transition (§4.5 "Persist state after every task
// transition"; §9 Design Notes "Abstract collaborators"). internal/
// statestore.Store satisfies it.
type StateStore interface {
	Save(state WorkflowState) error
}

// Executor runs a planner.WorkflowPlan with bounded concurrency, grounded
// on the teacher's Frontier[S] admission loop: a running-task counter
// checked against MaxParallel caps in-flight tasks while a ready-set scan
// replaces the heap (task order
// here is the dependency relation, not a replay-stable OrderKey, since the
// spec makes no ordering guarantee between independent tasks — §5
// "Ordering guarantees").
type Executor struct {
	opts Options
}

// New builds an Executor. Unset Options fields fall back to §4.5 defaults.
func New(opts Options) *Executor {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 3
	}
	if opts.Retry == (RetryPolicy{}) {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.TaskFunc == nil {
		opts.TaskFunc = builtinDispatch
	}
	return &Executor{opts: opts}
}

// taskOutcome is sent on the completion channel when a task's goroutine
// reaches a terminal status.
type taskOutcome struct {
	taskID string
}

// Run executes plan to completion, persisting state after every
// transition, and returns the final WorkflowState (§4.5).
func (e *Executor) Run(ctx context.Context, workflowID string, plan planner.WorkflowPlan, store StateStore) (WorkflowState, error) {
	return e.runLoop(ctx, workflowID, plan, newWorkflowState(workflowID, plan), store)
}

// Resume reloads a previously persisted WorkflowState, resets every
// {failed, blocked} task to pending with retries/error cleared, and
// re-executes (§4.5 Resume). Tasks already succeeded are not re-run.
func (e *Executor) Resume(ctx context.Context, workflowID string, plan planner.WorkflowPlan, previous WorkflowState, store StateStore) (WorkflowState, error) {
	resumed := resetForResume(previous)
	return e.runLoop(ctx, workflowID, plan, resumed, store)
}

func resetForResume(state WorkflowState) WorkflowState {
	now := time.Now()
	state.Status = WorkflowRunning
	state.ResumedAt = &now
	state.CompletedAt = nil
	state.DurationS = nil
	for _, ts := range state.Tasks {
		if ts.Status == StatusFailed || ts.Status == StatusBlocked {
			ts.Status = StatusPending
			ts.Retries = 0
			ts.Error = ""
			ts.StartedAt = nil
			ts.CompletedAt = nil
			ts.DurationS = nil
		}
	}
	return state
}

func (e *Executor) runLoop(ctx context.Context, workflowID string, plan planner.WorkflowPlan, state WorkflowState, store StateStore) (WorkflowState, error) {
	var mu sync.Mutex

	save := func() {
		mu.Lock()
		snapshot := cloneState(state)
		mu.Unlock()
		if err := store.Save(snapshot); err != nil {
			log.Error().Err(err).Str("workflow_id", workflowID).Msg("executor: state save failed")
		}
	}
	save()

	dependents := reverseDependencies(plan)
	done := make(chan taskOutcome, len(plan.Tasks))
	running := 0

	taskByID := make(map[string]planner.WorkflowTask, len(plan.Tasks))
	for _, t := range plan.Tasks {
		taskByID[t.ID] = t
	}

	for {
		mu.Lock()
		ready := readyTasks(state, plan)
		for len(ready) > 0 && running < e.opts.MaxParallel {
			taskID := ready[0]
			ready = ready[1:]

			ts := state.Tasks[taskID]
			now := time.Now()
			ts.Status = StatusRunning
			ts.StartedAt = &now
			running++

			task := taskByID[taskID]
			go e.runTask(ctx, workflowID, task, state, &mu, done)
		}
		allDone := running == 0 && len(ready) == 0 && noPendingTasks(state)
		mu.Unlock()

		if allDone {
			break
		}

		save()

		select {
		case outcome := <-done:
			mu.Lock()
			running--
			ts := state.Tasks[outcome.taskID]
			if ts.Status == StatusFailed {
				propagateBlocked(state, dependents, outcome.taskID)
			}
			mu.Unlock()
		case <-ctx.Done():
			mu.Lock()
			cancelNonTerminal(state)
			cancelled := finalizeState(cloneState(state))
			mu.Unlock()
			if err := store.Save(cancelled); err != nil {
				log.Error().Err(err).Str("workflow_id", workflowID).Msg("executor: cancelled state save failed")
			}
			return cancelled, ctx.Err()
		}
	}

	mu.Lock()
	finalState := finalizeState(cloneState(state))
	mu.Unlock()
	if err := store.Save(finalState); err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("executor: final state save failed")
	}
	return finalState, nil
}

func newWorkflowState(workflowID string, plan planner.WorkflowPlan) WorkflowState {
	tasks := make(map[string]*TaskState, len(plan.Tasks))
	now := time.Now()
	for _, t := range plan.Tasks {
		tasks[t.ID] = &TaskState{
			ID:           t.ID,
			Status:       StatusPending,
			Dependencies: append([]string(nil), t.Dependencies...),
			CreatedAt:    now,
		}
	}
	return WorkflowState{
		ID:          workflowID,
		PlanID:      plan.ID,
		Goal:        plan.Goal,
		Status:      WorkflowRunning,
		StartedAt:   now,
		Tasks:       tasks,
		Checkpoints: append([]string(nil), plan.Checkpoints...),
	}
}

// readyTasks returns pending tasks whose dependencies are all succeeded,
// sorted by id for a deterministic admission order among equally-ready
// tasks (§4.5 Scheduling loop).
func readyTasks(state WorkflowState, plan planner.WorkflowPlan) []string {
	var ready []string
	for _, t := range plan.Tasks {
		ts := state.Tasks[t.ID]
		if ts.Status != StatusPending {
			continue
		}
		if allSucceeded(state, ts.Dependencies) {
			ready = append(ready, t.ID)
		}
	}
	sort.Strings(ready)
	return ready
}

func allSucceeded(state WorkflowState, deps []string) bool {
	for _, d := range deps {
		if state.Tasks[d].Status != StatusSucceeded {
			return false
		}
	}
	return true
}

func noPendingTasks(state WorkflowState) bool {
	for _, ts := range state.Tasks {
		if ts.Status == StatusPending {
			return false
		}
	}
	return true
}

// runTask executes one task to terminal status (succeeded or failed),
// retrying per e.opts.Retry with computeBackoff between attempts (§4.5
// Retry policy).
func (e *Executor) runTask(ctx context.Context, workflowID string, task planner.WorkflowTask, state WorkflowState, mu *sync.Mutex, done chan<- taskOutcome) {
	req := TaskRequest{
		TaskID: task.ID, Type: string(task.Type), Name: task.Name,
		Description: task.Description, Tool: task.Tool, Model: task.Model,
		Prompt: task.Prompt, Parameters: task.Parameters,
		MaxExecutionTimeS: task.MaxExecutionTimeS,
	}

	var result TaskResult
	var err error
	attemptsUsed := 0
	for attempt := 1; attempt <= e.opts.MaxAttempts(); attempt++ {
		attemptsUsed = attempt
		req.Attempt = attempt
		result, err = e.dispatch(req)
		if err == nil {
			break
		}
		if attempt < e.opts.MaxAttempts() {
			delay := computeBackoff(attempt, e.opts.Retry)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				attempt = e.opts.MaxAttempts()
			}
		}
	}

	mu.Lock()
	ts := state.Tasks[task.ID]
	now := time.Now()
	ts.CompletedAt = &now
	if ts.StartedAt != nil {
		d := now.Sub(*ts.StartedAt).Seconds()
		ts.DurationS = &d
	}
	ts.Retries = attemptsUsed - 1

	if err == nil {
		ts.Status = StatusSucceeded
		ts.Output = result.Output
		ts.Artifacts = collectArtifacts(workflowID, task.ID, result.Artifacts, now)
	} else {
		ts.Status = StatusFailed
		ts.Error = err.Error()
	}
	mu.Unlock()

	done <- taskOutcome{taskID: task.ID}
}

func collectArtifacts(workflowID, taskID string, raw []any, createdAt time.Time) []Artifact {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Artifact, len(raw))
	for i, data := range raw {
		out[i] = Artifact{
			ID:         fmt.Sprintf("artifact:%s:%s:%d", workflowID, taskID, createdAt.Unix()),
			WorkflowID: workflowID,
			TaskID:     taskID,
			CreatedAt:  createdAt,
			Data:       data,
		}
	}
	return out
}

// reverseDependencies builds a forward dependents index: taskID ->
// task ids that directly depend on it.
func reverseDependencies(plan planner.WorkflowPlan) map[string][]string {
	dependents := make(map[string][]string, len(plan.Tasks))
	for _, t := range plan.Tasks {
		for _, dep := range t.Dependencies {
			dependents[dep] = append(dependents[dep], t.ID)
		}
	}
	return dependents
}

// propagateBlocked transitions every pending task transitively depending
// on failedID to blocked (§4.5 Failure propagation).
func propagateBlocked(state WorkflowState, dependents map[string][]string, failedID string) {
	queue := []string{failedID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dependentID := range dependents[current] {
			ts := state.Tasks[dependentID]
			if ts.Status != StatusPending {
				continue
			}
			ts.Status = StatusBlocked
			ts.Error = fmt.Sprintf("dependency %s failed", current)
			queue = append(queue, dependentID)
		}
	}
}

func cancelNonTerminal(state WorkflowState) {
	for _, ts := range state.Tasks {
		if ts.Status == StatusPending || ts.Status == StatusRunning {
			ts.Status = StatusBlocked
			ts.Error = "workflow cancelled"
		}
	}
}

// finalizeState stamps workflow-level completion (§4.5 Completion:
// "completed iff every task succeeded; else failed") and aggregates
// artifacts.
func finalizeState(state WorkflowState) WorkflowState {
	completed := true
	var artifacts []Artifact
	for _, ts := range state.Tasks {
		if ts.Status != StatusSucceeded {
			completed = false
		}
		artifacts = append(artifacts, ts.Artifacts...)
	}

	now := time.Now()
	state.CompletedAt = &now
	d := now.Sub(state.StartedAt).Seconds()
	state.DurationS = &d
	state.Artifacts = artifacts

	if completed {
		state.Status = WorkflowCompleted
	} else {
		state.Status = WorkflowFailed
	}
	return state
}

// cloneState returns a snapshot safe to hand to the StateStore without
// aliasing the live TaskState pointers the scheduler keeps mutating.
func cloneState(state WorkflowState) WorkflowState {
	tasksCopy := make(map[string]*TaskState, len(state.Tasks))
	for id, ts := range state.Tasks {
		cp := *ts
		tasksCopy[id] = &cp
	}
	out := state
	out.Tasks = tasksCopy
	return out
}

// MaxAttempts returns the configured max attempts, defaulting to 3.
func (o Options) MaxAttempts() int {
	if o.Retry.MaxAttempts <= 0 {
		return 3
	}
	return o.Retry.MaxAttempts
}

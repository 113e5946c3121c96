package executor

import (
	"fmt"
	"time"
)

// dispatch runs req through the configured TaskFunc, enforcing
// req.MaxExecutionTimeS when positive (§4.5 Cancellation & timeouts:
// "overshoot is a task-level failure, counts as an attempt"). Grounded
// on the teacher's executeNodeWithTimeout (graph/timeout.go), adapted
// from a context-deadline wrap to a result-channel race since TaskFunc
// carries no context for the executor to cancel through.
func (e *Executor) dispatch(req TaskRequest) (TaskResult, error) {
	if req.MaxExecutionTimeS <= 0 {
		return e.opts.TaskFunc(req)
	}

	type outcome struct {
		result TaskResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := e.opts.TaskFunc(req)
		done <- outcome{result, err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-time.After(time.Duration(req.MaxExecutionTimeS * float64(time.Second))):
		return TaskResult{}, fmt.Errorf("executor: task %s exceeded max execution time of %.1fs", req.TaskID, req.MaxExecutionTimeS)
	}
}

// builtinDispatch is the default task invocation used when Options.TaskFunc
// is not supplied, keyed on the five canonical task types (§4.5 "Task
// invocation"). It produces a deterministic placeholder result describing
// what would be dispatched — concrete tool/model execution is an external
// collaborator (§9 Design Notes: "Abstract collaborators").
func builtinDispatch(req TaskRequest) (TaskResult, error) {
	switch req.Type {
	case "retrieval":
		return TaskResult{Output: fmt.Sprintf("retrieved context for %q via %s", req.Description, req.Tool)}, nil
	case "computation":
		return TaskResult{Output: fmt.Sprintf("computed result for %q via %s", req.Description, req.Tool)}, nil
	case "verification":
		return TaskResult{Output: fmt.Sprintf("verified %q via %s", req.Description, req.Tool)}, nil
	case "reasoning":
		return TaskResult{Output: fmt.Sprintf("reasoned about %q via %s/%s", req.Description, req.Tool, req.Model)}, nil
	case "synthesis":
		return TaskResult{Output: fmt.Sprintf("synthesized result for %q via %s/%s", req.Description, req.Tool, req.Model)}, nil
	default:
		return TaskResult{}, fmt.Errorf("executor: no dispatcher for task type %q", req.Type)
	}
}

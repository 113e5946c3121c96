package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchRunsWithoutTimeoutWhenUnset(t *testing.T) {
	e := New(DefaultOptions())
	e.opts.TaskFunc = func(req TaskRequest) (TaskResult, error) {
		return TaskResult{Output: "ok"}, nil
	}

	result, err := e.dispatch(TaskRequest{TaskID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Output)
}

func TestDispatchFailsTaskOnTimeout(t *testing.T) {
	e := New(DefaultOptions())
	e.opts.TaskFunc = func(req TaskRequest) (TaskResult, error) {
		time.Sleep(50 * time.Millisecond)
		return TaskResult{Output: "too slow"}, nil
	}

	_, err := e.dispatch(TaskRequest{TaskID: "t1", MaxExecutionTimeS: 0.01})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded max execution time")
}

func TestRunCountsTimeoutAsAFailedAttempt(t *testing.T) {
	plan := chainPlan("a")
	plan.Tasks[0].MaxExecutionTimeS = 0.01

	e := New(Options{MaxParallel: 1, Retry: RetryPolicy{MaxAttempts: 1, BaseDelayS: 0.001, ExponentialBase: 2, MaxDelayS: 1}, TaskFunc: func(req TaskRequest) (TaskResult, error) {
		time.Sleep(50 * time.Millisecond)
		return TaskResult{}, nil
	}})

	state, err := e.Run(t.Context(), "wf1", plan, &memStateStore{})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, state.Tasks["a"].Status)
	assert.Equal(t, WorkflowFailed, state.Status)
}

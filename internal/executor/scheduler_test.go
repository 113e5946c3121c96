package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgraph/engine/internal/planner"
)

// memStateStore is a minimal in-memory StateStore for tests — it keeps only
// the latest saved snapshot and counts how many times Save was called.
type memStateStore struct {
	mu    sync.Mutex
	saves int
	last  WorkflowState
}

func (m *memStateStore) Save(state WorkflowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.last = state
	return nil
}

func chainPlan(ids ...string) planner.WorkflowPlan {
	tasks := make([]planner.WorkflowTask, len(ids))
	for i, id := range ids {
		var deps []string
		if i > 0 {
			deps = []string{ids[i-1]}
		}
		tasks[i] = planner.WorkflowTask{ID: id, Type: planner.TaskReasoning, Name: id, Dependencies: deps}
	}
	return planner.WorkflowPlan{ID: "plan:test", Goal: "test", Tasks: tasks}
}

func TestRunSucceedsWhenAllTasksSucceed(t *testing.T) {
	plan := chainPlan("t1", "t2", "t3")
	exec := New(Options{
		MaxParallel: 2,
		TaskFunc: func(req TaskRequest) (TaskResult, error) {
			return TaskResult{Output: "ok:" + req.TaskID}, nil
		},
	})
	store := &memStateStore{}

	state, err := exec.Run(context.Background(), "wf1", plan, store)
	require.NoError(t, err)
	assert.Equal(t, WorkflowCompleted, state.Status)
	for _, id := range []string{"t1", "t2", "t3"} {
		assert.Equal(t, StatusSucceeded, state.Tasks[id].Status)
	}
	assert.Greater(t, store.saves, 0)
}

func TestRunRetriesThenSucceeds(t *testing.T) {
	plan := chainPlan("t1")
	var attempts int32
	exec := New(Options{
		MaxParallel: 1,
		Retry:       RetryPolicy{MaxAttempts: 3, BaseDelayS: 0.001, ExponentialBase: 2.0, MaxDelayS: 0.01},
		TaskFunc: func(req TaskRequest) (TaskResult, error) {
			n := atomic.AddInt32(&attempts, 1)
			if n < 3 {
				return TaskResult{}, fmt.Errorf("transient failure %d", n)
			}
			return TaskResult{Output: "done"}, nil
		},
	})
	store := &memStateStore{}

	state, err := exec.Run(context.Background(), "wf2", plan, store)
	require.NoError(t, err)
	ts := state.Tasks["t1"]
	assert.Equal(t, StatusSucceeded, ts.Status)
	assert.Equal(t, 2, ts.Retries)
	assert.Equal(t, WorkflowCompleted, state.Status)
}

func TestRunPropagatesBlockedOnFailure(t *testing.T) {
	plan := chainPlan("t1", "t2", "t3")
	exec := New(Options{
		MaxParallel: 2,
		Retry:       RetryPolicy{MaxAttempts: 1, BaseDelayS: 0.001, ExponentialBase: 2.0, MaxDelayS: 0.01},
		TaskFunc: func(req TaskRequest) (TaskResult, error) {
			if req.TaskID == "t1" {
				return TaskResult{}, fmt.Errorf("boom")
			}
			return TaskResult{Output: "ok"}, nil
		},
	})
	store := &memStateStore{}

	state, err := exec.Run(context.Background(), "wf3", plan, store)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, state.Tasks["t1"].Status)
	assert.Equal(t, StatusBlocked, state.Tasks["t2"].Status)
	assert.Equal(t, StatusBlocked, state.Tasks["t3"].Status)
	assert.Equal(t, WorkflowFailed, state.Status)
}

func TestRunRespectsBoundedParallelism(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	tasks := make([]planner.WorkflowTask, len(ids))
	for i, id := range ids {
		tasks[i] = planner.WorkflowTask{ID: id, Type: planner.TaskRetrieval, Name: id}
	}
	plan := planner.WorkflowPlan{ID: "plan:parallel", Goal: "test", Tasks: tasks}

	var mu sync.Mutex
	current, maxSeen := 0, 0
	exec := New(Options{
		MaxParallel: 2,
		TaskFunc: func(req TaskRequest) (TaskResult, error) {
			mu.Lock()
			current++
			if current > maxSeen {
				maxSeen = current
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			return TaskResult{Output: "ok"}, nil
		},
	})
	store := &memStateStore{}

	state, err := exec.Run(context.Background(), "wf4", plan, store)
	require.NoError(t, err)
	assert.Equal(t, WorkflowCompleted, state.Status)
	assert.LessOrEqual(t, maxSeen, 2)
}

func TestResumeSkipsSucceededAndRetriesFailed(t *testing.T) {
	plan := chainPlan("t1", "t2")
	now := time.Now()
	previous := WorkflowState{
		ID:        "wf5",
		PlanID:    plan.ID,
		Goal:      plan.Goal,
		Status:    WorkflowFailed,
		StartedAt: now.Add(-time.Minute),
		Tasks: map[string]*TaskState{
			"t1": {ID: "t1", Status: StatusSucceeded},
			"t2": {ID: "t2", Status: StatusFailed, Dependencies: []string{"t1"}, Error: "boom", Retries: 1},
		},
	}

	var t1Calls, t2Calls int32
	exec := New(Options{
		MaxParallel: 2,
		TaskFunc: func(req TaskRequest) (TaskResult, error) {
			if req.TaskID == "t1" {
				atomic.AddInt32(&t1Calls, 1)
			} else {
				atomic.AddInt32(&t2Calls, 1)
			}
			return TaskResult{Output: "ok"}, nil
		},
	})
	store := &memStateStore{}

	state, err := exec.Resume(context.Background(), "wf5", plan, previous, store)
	require.NoError(t, err)
	assert.Equal(t, int32(0), t1Calls, "succeeded task must not re-run")
	assert.Equal(t, int32(1), t2Calls, "failed task must re-run once reset to pending")
	assert.Equal(t, StatusSucceeded, state.Tasks["t1"].Status)
	assert.Equal(t, StatusSucceeded, state.Tasks["t2"].Status)
	assert.Equal(t, WorkflowCompleted, state.Status)
	assert.NotNil(t, state.ResumedAt)
}

func TestRunCancelsOnContextDone(t *testing.T) {
	plan := chainPlan("t1", "t2")
	block := make(chan struct{})
	exec := New(Options{
		MaxParallel: 1,
		TaskFunc: func(req TaskRequest) (TaskResult, error) {
			<-block
			return TaskResult{Output: "ok"}, nil
		},
	})
	store := &memStateStore{}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	state, err := exec.Run(ctx, "wf6", plan, store)
	close(block)

	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, WorkflowFailed, state.Status)
}

func TestDefaultDispatchRejectsUnknownTaskType(t *testing.T) {
	_, err := builtinDispatch(TaskRequest{TaskID: "t1", Type: "unknown"})
	assert.Error(t, err)
}

func TestComputeBackoffFirstAttemptEqualsBaseDelay(t *testing.T) {
	policy := RetryPolicy{BaseDelayS: 1.0, ExponentialBase: 2.0, MaxDelayS: 30.0}
	d := computeBackoff(1, policy)
	assert.Equal(t, time.Second, d)
}

func TestComputeBackoffCapsAtMaxDelay(t *testing.T) {
	policy := RetryPolicy{BaseDelayS: 1.0, ExponentialBase: 2.0, MaxDelayS: 5.0}
	d := computeBackoff(10, policy)
	assert.Equal(t, 5*time.Second, d)
}

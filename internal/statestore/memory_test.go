package statestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgraph/engine/internal/executor"
)

func sampleState(id string) executor.WorkflowState {
	return executor.WorkflowState{
		ID:        id,
		Goal:      "craft a healing potion",
		Status:    executor.WorkflowRunning,
		StartedAt: time.Now(),
		Tasks: map[string]*executor.TaskState{
			"t1": {ID: "t1", Status: executor.StatusSucceeded},
		},
	}
}

func TestMemorySaveAndGetRoundTrips(t *testing.T) {
	store := NewMemory()
	state := sampleState("wf1")

	require.NoError(t, store.Save(state))

	got, err := store.Get("wf1")
	require.NoError(t, err)
	assert.Equal(t, "craft a healing potion", got.Goal)
	assert.Equal(t, executor.WorkflowRunning, got.Status)
}

func TestMemoryGetUnknownIDReturnsErrNotFound(t *testing.T) {
	store := NewMemory()
	_, err := store.Get("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListFiltersByStatusAndSortsDescending(t *testing.T) {
	store := NewMemory()

	older := sampleState("wf-older")
	older.StartedAt = time.Now().Add(-time.Hour)
	older.Status = executor.WorkflowCompleted

	newer := sampleState("wf-newer")
	newer.StartedAt = time.Now()
	newer.Status = executor.WorkflowCompleted

	running := sampleState("wf-running")
	running.Status = executor.WorkflowRunning

	require.NoError(t, store.Save(older))
	require.NoError(t, store.Save(newer))
	require.NoError(t, store.Save(running))

	completed, err := store.List("completed")
	require.NoError(t, err)
	require.Len(t, completed, 2)
	assert.Equal(t, "wf-newer", completed[0].ID)
	assert.Equal(t, "wf-older", completed[1].ID)

	all, err := store.List("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryListClipsGoalTo100Chars(t *testing.T) {
	store := NewMemory()
	state := sampleState("wf-long")
	state.Goal = longRepeat("x", 250)
	require.NoError(t, store.Save(state))

	summaries, err := store.List("")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Len(t, summaries[0].Goal, 100)
}

func TestMemoryDeleteRemovesStateAndArtifacts(t *testing.T) {
	store := NewMemory()
	require.NoError(t, store.Save(sampleState("wf-del")))
	aid, err := store.SaveArtifact("wf-del", "t1", map[string]any{"result": "ok"})
	require.NoError(t, err)

	require.NoError(t, store.Delete("wf-del"))

	_, err = store.Get("wf-del")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetArtifact(aid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteUnknownIDReturnsErrNotFound(t *testing.T) {
	store := NewMemory()
	assert.ErrorIs(t, store.Delete("ghost"), ErrNotFound)
}

func TestMemorySaveArtifactIDFollowsCanonicalScheme(t *testing.T) {
	store := NewMemory()
	id, err := store.SaveArtifact("wf:1", "task:1", "payload")
	require.NoError(t, err)
	assert.Contains(t, id, "artifact:wf_1:task_1:")
}

func TestMemoryGetArtifactsReturnsInsertionOrder(t *testing.T) {
	store := NewMemory()
	id1, err := store.SaveArtifact("wf-multi", "t1", "first")
	require.NoError(t, err)
	id2, err := store.SaveArtifact("wf-multi", "t2", "second")
	require.NoError(t, err)

	artifacts, err := store.GetArtifacts("wf-multi")
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, id1, artifacts[0].ID)
	assert.Equal(t, id2, artifacts[1].ID)
}

func TestSafeNameReplacesUnsafeCharacters(t *testing.T) {
	assert.Equal(t, "wf_1_2-3.4", safeName("wf:1/2-3.4"))
}

func longRepeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

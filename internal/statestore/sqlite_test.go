package statestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	store, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteSaveAndGetRoundTrips(t *testing.T) {
	store := newTestSQLite(t)
	require.NoError(t, store.Save(sampleState("wf1")))

	got, err := store.Get("wf1")
	require.NoError(t, err)
	assert.Equal(t, "craft a healing potion", got.Goal)
}

func TestSQLiteGetUnknownIDReturnsErrNotFound(t *testing.T) {
	store := newTestSQLite(t)
	_, err := store.Get("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteSaveIsUpsert(t *testing.T) {
	store := newTestSQLite(t)
	state := sampleState("wf1")
	require.NoError(t, store.Save(state))

	state.Goal = "updated goal"
	require.NoError(t, store.Save(state))

	got, err := store.Get("wf1")
	require.NoError(t, err)
	assert.Equal(t, "updated goal", got.Goal)
}

func TestSQLiteListFiltersByStatus(t *testing.T) {
	store := newTestSQLite(t)
	completed := sampleState("wf-completed")
	completed.Status = "completed"
	running := sampleState("wf-running")
	running.Status = "running"

	require.NoError(t, store.Save(completed))
	require.NoError(t, store.Save(running))

	summaries, err := store.List("completed")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "wf-completed", summaries[0].ID)
}

func TestSQLiteArtifactRoundTripsAndDeletesWithWorkflow(t *testing.T) {
	store := newTestSQLite(t)
	require.NoError(t, store.Save(sampleState("wf-art")))

	id, err := store.SaveArtifact("wf-art", "t1", map[string]any{"ok": true})
	require.NoError(t, err)

	artifact, err := store.GetArtifact(id)
	require.NoError(t, err)
	assert.Equal(t, "wf-art", artifact.WorkflowID)

	require.NoError(t, store.Delete("wf-art"))
	_, err = store.GetArtifact(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

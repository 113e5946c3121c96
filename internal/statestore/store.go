// Package statestore persists executor.WorkflowState records and their
// artifacts (§4.6). Three backends share the Store interface: Memory
// (tests, grounded on graph/store/memory.go), SQLite (default durable
// backend, grounded on graph/store/sqlite.go), and MySQL (alternate
// durable backend, grounded on graph/store/mysql.go). The caller picks
// one; cmd/workgraph selects it from STATE_STORE_DSN.
package statestore

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/workgraph/engine/internal/executor"
)

// ErrNotFound is returned when a requested workflow or artifact id does
// not exist.
var ErrNotFound = errors.New("statestore: not found")

// Store is the persistence contract for workflow state and artifacts
// (§4.6). It is a superset of executor.StateStore: every Store satisfies
// executor.StateStore's Save method, so an Executor can be handed a Store
// directly.
type Store interface {
	Save(state executor.WorkflowState) error
	Get(id string) (executor.WorkflowState, error)
	List(status string) ([]Summary, error)
	Delete(id string) error
	SaveArtifact(workflowID, taskID string, data any) (string, error)
	GetArtifact(id string) (executor.Artifact, error)
	GetArtifacts(workflowID string) ([]executor.Artifact, error)
}

var _ executor.StateStore = Store(nil)

// Summary is the truncated listing projection returned by List (§4.6
// Listing: "goal clipped to 100 chars, task/artifact counts").
type Summary struct {
	ID             string                   `json:"id"`
	Goal           string                   `json:"goal"`
	Status         executor.WorkflowStatus  `json:"status"`
	StartedAt      time.Time                `json:"started_at"`
	CompletedAt    *time.Time               `json:"completed_at,omitempty"`
	TaskCount      int                      `json:"task_count"`
	ArtifactCount  int                      `json:"artifact_count"`
}

const summaryGoalClip = 100

// toSummary projects a full WorkflowState down to its listing Summary.
func toSummary(state executor.WorkflowState) Summary {
	goal := state.Goal
	if len(goal) > summaryGoalClip {
		goal = goal[:summaryGoalClip]
	}
	return Summary{
		ID:            state.ID,
		Goal:          goal,
		Status:        state.Status,
		StartedAt:     state.StartedAt,
		CompletedAt:   state.CompletedAt,
		TaskCount:     len(state.Tasks),
		ArtifactCount: len(state.Artifacts),
	}
}

// sortSummariesByStartedDesc orders summaries newest-first (§4.6 Listing:
// "sort by started_at descending").
func sortSummariesByStartedDesc(summaries []Summary) {
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartedAt.After(summaries[j].StartedAt)
	})
}

var unsafePathChar = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// safeName maps an id to a filesystem/key-safe form, replacing anything
// outside [A-Za-z0-9._-] with "_" (§4.6 Filesystem safety). Logical ids
// keep their original form inside the stored payload; only the
// path/key segment is mapped.
func safeName(id string) string {
	return unsafePathChar.ReplaceAllString(id, "_")
}

// artifactID builds the canonical artifact id "artifact:<wf>:<task>:<unix_seconds>"
// (§4.6 Artifact ids). workflowID/taskID are mapped through safeName since
// this id doubles as the backing key for any future filesystem export of
// an artifact (the id itself, not the logical workflow/task ids, needs
// to survive as a path segment).
func artifactID(workflowID, taskID string, createdAt time.Time) string {
	return fmt.Sprintf("artifact:%s:%s:%d", safeName(workflowID), safeName(taskID), createdAt.Unix())
}

package statestore

import (
	"sync"
	"time"

	"github.com/workgraph/engine/internal/executor"
)

// Memory is an in-memory Store, grounded on the teacher's MemStore[S]
// (graph/store/memory.go). Data is lost on process exit; intended for
// tests and short-lived development runs.
type Memory struct {
	mu        sync.RWMutex
	workflows map[string]executor.WorkflowState
	artifacts map[string]executor.Artifact   // artifact id -> artifact
	byWorkflow map[string][]string           // workflow id -> artifact ids, insertion order
}

// NewMemory builds an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		workflows:  make(map[string]executor.WorkflowState),
		artifacts:  make(map[string]executor.Artifact),
		byWorkflow: make(map[string][]string),
	}
}

func (m *Memory) Save(state executor.WorkflowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflows[state.ID] = state
	return nil
}

func (m *Memory) Get(id string) (executor.WorkflowState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.workflows[id]
	if !ok {
		return executor.WorkflowState{}, ErrNotFound
	}
	return state, nil
}

func (m *Memory) List(status string) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]Summary, 0, len(m.workflows))
	for _, state := range m.workflows {
		if status != "" && string(state.Status) != status {
			continue
		}
		summaries = append(summaries, toSummary(state))
	}
	sortSummariesByStartedDesc(summaries)
	return summaries, nil
}

func (m *Memory) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workflows[id]; !ok {
		return ErrNotFound
	}
	delete(m.workflows, id)
	for _, aid := range m.byWorkflow[id] {
		delete(m.artifacts, aid)
	}
	delete(m.byWorkflow, id)
	return nil
}

func (m *Memory) SaveArtifact(workflowID, taskID string, data any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	id := artifactID(workflowID, taskID, now)
	artifact := executor.Artifact{
		ID:         id,
		WorkflowID: workflowID,
		TaskID:     taskID,
		CreatedAt:  now,
		Data:       data,
	}
	m.artifacts[id] = artifact
	m.byWorkflow[workflowID] = append(m.byWorkflow[workflowID], id)
	return id, nil
}

func (m *Memory) GetArtifact(id string) (executor.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	artifact, ok := m.artifacts[id]
	if !ok {
		return executor.Artifact{}, ErrNotFound
	}
	return artifact, nil
}

func (m *Memory) GetArtifacts(workflowID string) ([]executor.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byWorkflow[workflowID]
	out := make([]executor.Artifact, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.artifacts[id])
	}
	return out, nil
}

var _ Store = (*Memory)(nil)

package statestore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/workgraph/engine/internal/executor"
)

// SQLite is the default durable Store, grounded on the teacher's
// SQLiteStore[S] (graph/store/sqlite.go): single-file WAL-mode database,
// JSON-blob columns, auto-migrated on first use.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens (creating if needed) a SQLite-backed Store at path.
// Use ":memory:" for an ephemeral in-process database.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("statestore: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("statestore: enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("statestore: set busy timeout: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			goal TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			state TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_workflows_status ON workflows(status)`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_workflow ON artifacts(workflow_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("statestore: create tables: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Save(state executor.WorkflowState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("statestore: marshal workflow state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO workflows (id, goal, status, started_at, state)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			goal = excluded.goal,
			status = excluded.status,
			state = excluded.state
	`, state.ID, state.Goal, string(state.Status), state.StartedAt, string(blob))
	if err != nil {
		return fmt.Errorf("statestore: save workflow: %w", err)
	}
	return nil
}

func (s *SQLite) Get(id string) (executor.WorkflowState, error) {
	var blob string
	err := s.db.QueryRow(`SELECT state FROM workflows WHERE id = ?`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return executor.WorkflowState{}, ErrNotFound
	}
	if err != nil {
		return executor.WorkflowState{}, fmt.Errorf("statestore: get workflow: %w", err)
	}
	var state executor.WorkflowState
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return executor.WorkflowState{}, fmt.Errorf("statestore: unmarshal workflow state: %w", err)
	}
	return state, nil
}

func (s *SQLite) List(status string) ([]Summary, error) {
	rows, err := s.listRows(status)
	if err != nil {
		return nil, err
	}
	sortSummariesByStartedDesc(rows)
	return rows, nil
}

func (s *SQLite) listRows(status string) ([]Summary, error) {
	query := `SELECT state FROM workflows`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("statestore: list workflows: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("statestore: scan workflow row: %w", err)
		}
		var state executor.WorkflowState
		if err := json.Unmarshal([]byte(blob), &state); err != nil {
			return nil, fmt.Errorf("statestore: unmarshal workflow state: %w", err)
		}
		out = append(out, toSummary(state))
	}
	return out, rows.Err()
}

func (s *SQLite) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("statestore: delete workflow: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	if _, err := s.db.Exec(`DELETE FROM artifacts WHERE workflow_id = ?`, id); err != nil {
		return fmt.Errorf("statestore: delete workflow artifacts: %w", err)
	}
	return nil
}

func (s *SQLite) SaveArtifact(workflowID, taskID string, data any) (string, error) {
	now := time.Now()
	id := artifactID(workflowID, taskID, now)

	blob, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("statestore: marshal artifact data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`
		INSERT INTO artifacts (id, workflow_id, task_id, created_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, id, workflowID, taskID, now, string(blob))
	if err != nil {
		return "", fmt.Errorf("statestore: save artifact: %w", err)
	}
	return id, nil
}

func (s *SQLite) GetArtifact(id string) (executor.Artifact, error) {
	var workflowID, taskID, blob string
	var createdAt time.Time
	err := s.db.QueryRow(`SELECT workflow_id, task_id, created_at, data FROM artifacts WHERE id = ?`, id).
		Scan(&workflowID, &taskID, &createdAt, &blob)
	if err == sql.ErrNoRows {
		return executor.Artifact{}, ErrNotFound
	}
	if err != nil {
		return executor.Artifact{}, fmt.Errorf("statestore: get artifact: %w", err)
	}
	var data any
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return executor.Artifact{}, fmt.Errorf("statestore: unmarshal artifact data: %w", err)
	}
	return executor.Artifact{ID: id, WorkflowID: workflowID, TaskID: taskID, CreatedAt: createdAt, Data: data}, nil
}

func (s *SQLite) GetArtifacts(workflowID string) ([]executor.Artifact, error) {
	rows, err := s.db.Query(`SELECT id, task_id, created_at, data FROM artifacts WHERE workflow_id = ? ORDER BY created_at ASC`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("statestore: list artifacts: %w", err)
	}
	defer rows.Close()

	var out []executor.Artifact
	for rows.Next() {
		var id, taskID, blob string
		var createdAt time.Time
		if err := rows.Scan(&id, &taskID, &createdAt, &blob); err != nil {
			return nil, fmt.Errorf("statestore: scan artifact row: %w", err)
		}
		var data any
		if err := json.Unmarshal([]byte(blob), &data); err != nil {
			return nil, fmt.Errorf("statestore: unmarshal artifact data: %w", err)
		}
		out = append(out, executor.Artifact{ID: id, WorkflowID: workflowID, TaskID: taskID, CreatedAt: createdAt, Data: data})
	}
	return out, rows.Err()
}

var _ Store = (*SQLite)(nil)

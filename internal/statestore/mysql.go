package statestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/workgraph/engine/internal/executor"
)

// MySQL is the alternate durable Store, grounded on the teacher's
// MySQLStore[S] (graph/store/mysql.go): connection-pooled, production
// deployments that need a shared server rather than a single file.
type MySQL struct {
	db *sql.DB
}

// NewMySQL opens a MySQL-backed Store using dsn (go-sql-driver/mysql DSN
// format, e.g. "user:pass@tcp(localhost:3306)/workgraph?parseTime=true").
func NewMySQL(dsn string) (*MySQL, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("statestore: open mysql: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("statestore: ping mysql: %w", err)
	}

	m := &MySQL{db: db}
	if err := m.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func (m *MySQL) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workflows (
			id VARCHAR(255) PRIMARY KEY,
			goal TEXT NOT NULL,
			status VARCHAR(64) NOT NULL,
			started_at DATETIME NOT NULL,
			state LONGTEXT NOT NULL,
			INDEX idx_workflows_status (status)
		)`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			id VARCHAR(255) PRIMARY KEY,
			workflow_id VARCHAR(255) NOT NULL,
			task_id VARCHAR(255) NOT NULL,
			created_at DATETIME NOT NULL,
			data LONGTEXT NOT NULL,
			INDEX idx_artifacts_workflow (workflow_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statestore: create tables: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (m *MySQL) Close() error {
	return m.db.Close()
}

func (m *MySQL) Save(state executor.WorkflowState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("statestore: marshal workflow state: %w", err)
	}

	_, err = m.db.Exec(`
		INSERT INTO workflows (id, goal, status, started_at, state)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			goal = VALUES(goal),
			status = VALUES(status),
			state = VALUES(state)
	`, state.ID, state.Goal, string(state.Status), state.StartedAt, string(blob))
	if err != nil {
		return fmt.Errorf("statestore: save workflow: %w", err)
	}
	return nil
}

func (m *MySQL) Get(id string) (executor.WorkflowState, error) {
	var blob string
	err := m.db.QueryRow(`SELECT state FROM workflows WHERE id = ?`, id).Scan(&blob)
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

func (m *MySQL) List(status string) ([]Summary, error) {
	query := `SELECT state FROM workflows`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}

	rows, err := m.db.Query(query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortSummariesByStartedDesc(out)
	return out, nil
}

func (m *MySQL) Delete(id string) error {
	res, err := m.db.Exec(`DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("statestore: delete workflow: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	if _, err := m.db.Exec(`DELETE FROM artifacts WHERE workflow_id = ?`, id); err != nil {
		return fmt.Errorf("statestore: delete workflow artifacts: %w", err)
	}
	return nil
}

func (m *MySQL) SaveArtifact(workflowID, taskID string, data any) (string, error) {
	now := time.Now()
	id := artifactID(workflowID, taskID, now)

	blob, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("statestore: marshal artifact data: %w", err)
	}

	_, err = m.db.Exec(`
		INSERT INTO artifacts (id, workflow_id, task_id, created_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data)
	`, id, workflowID, taskID, now, string(blob))
	if err != nil {
		return "", fmt.Errorf("statestore: save artifact: %w", err)
	}
	return id, nil
}

func (m *MySQL) GetArtifact(id string) (executor.Artifact, error) {
	var workflowID, taskID, blob string
	var createdAt time.Time
	err := m.db.QueryRow(`SELECT workflow_id, task_id, created_at, data FROM artifacts WHERE id = ?`, id).
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

func (m *MySQL) GetArtifacts(workflowID string) ([]executor.Artifact, error) {
	rows, err := m.db.Query(`SELECT id, task_id, created_at, data FROM artifacts WHERE workflow_id = ? ORDER BY created_at ASC`, workflowID)
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

var _ Store = (*MySQL)(nil)

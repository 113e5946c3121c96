package graphstore

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// walOp names the mutation kind recorded in the write-ahead log.
type walOp string

const (
	walUpsertNode walOp = "upsert_node"
	walUpsertEdge walOp = "upsert_edge"
)

// walEntry is a single append-only log record (§4.1 Write-ahead log).
type walEntry struct {
	OpID      string    `json:"op_id"`
	Operation walOp     `json:"operation"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// wal appends mutations before they apply to in-memory state, then flushes
// a snapshot + log tail to stable storage. A nil path keeps the log
// in-memory only, which is sufficient for tests and ephemeral stores.
type wal struct {
	mu      sync.Mutex
	path    string
	entries []walEntry
}

func newWAL(path string) *wal {
	return &wal{path: path}
}

// append writes an entry to the in-memory tail. The caller is responsible
// for calling flush after the in-memory state has been updated.
func (w *wal) append(op walOp, data any) walEntry {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry := walEntry{
		OpID:      uuid.New().String(),
		Operation: op,
		Data:      data,
		Timestamp: time.Now(),
	}
	w.entries = append(w.entries, entry)
	return entry
}

// flush persists the log tail to stable storage. Storage I/O errors are
// swallowed per §4.1's failure semantics: callers see success unless the
// snapshot write itself is what failed; the in-memory log is authoritative
// for the active process either way.
func (w *wal) flush() error {
	if w.path == "" {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := json.Marshal(w.entries)
	if err != nil {
		return err
	}
	return os.WriteFile(w.path, data, 0o600)
}

// replay loads a persisted log tail, for cold-start recovery. Missing
// files are not an error: a fresh store has no prior log.
func (w *wal) replay() ([]walEntry, error) {
	if w.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []walEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

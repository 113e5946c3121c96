package graphstore

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/workgraph/engine/internal/idgen"
	"github.com/workgraph/engine/internal/value"
)

// Store is the versioned property-graph described in §4.1. It is backed by
// in-memory maps guarded by a single RWMutex (mutations are serialized per
// instance, reads may run concurrently — §5 Shared-resource policy),
// mirroring the teacher's store.MemStore[S] generalized from a single
// opaque state blob to independently addressable nodes and edges.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	edges map[string]*Edge
	// adjacency maps a node id to the ids of edges touching it, for O(1)
	// incident-edge lookup during traversal.
	incident map[string][]string

	wal          *wal
	snapshotPath string
}

// Options configures a Store's persistence backend.
type Options struct {
	// SnapshotDir, if non-empty, is where the node/edge snapshot and WAL
	// are written. Empty means in-memory only (used by tests).
	SnapshotDir string
}

// New creates a Store, replaying any WAL tail found at SnapshotDir on cold
// start (§4.1: "On cold start, load snapshot then replay log tail").
func New(opts Options) (*Store, error) {
	s := &Store{
		nodes:    make(map[string]*Node),
		edges:    make(map[string]*Edge),
		incident: make(map[string][]string),
	}
	if opts.SnapshotDir != "" {
		s.snapshotPath = opts.SnapshotDir + "/graph_snapshot.json"
		s.wal = newWAL(opts.SnapshotDir + "/graph_wal.json")
		if err := s.loadSnapshot(); err != nil {
			return nil, fmt.Errorf("graphstore: load snapshot: %w", err)
		}
		if err := s.replayWAL(); err != nil {
			return nil, fmt.Errorf("graphstore: replay wal: %w", err)
		}
	} else {
		s.wal = newWAL("")
	}
	return s, nil
}

type snapshot struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

func (s *Store) loadSnapshot() error {
	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	for _, n := range snap.Nodes {
		s.nodes[n.ID] = n
	}
	for _, e := range snap.Edges {
		s.edges[e.ID] = e
		s.indexEdge(e)
	}
	return nil
}

func (s *Store) replayWAL() error {
	entries, err := s.wal.replay()
	if err != nil {
		return err
	}
	for _, e := range entries {
		raw, err := json.Marshal(e.Data)
		if err != nil {
			continue
		}
		switch e.Operation {
		case walUpsertNode:
			var n Node
			if err := json.Unmarshal(raw, &n); err == nil {
				s.nodes[n.ID] = &n
			}
		case walUpsertEdge:
			var ed Edge
			if err := json.Unmarshal(raw, &ed); err == nil {
				s.edges[ed.ID] = &ed
				s.indexEdge(&ed)
			}
		}
	}
	return nil
}

func (s *Store) indexEdge(e *Edge) {
	s.incident[e.Source] = appendUnique(s.incident[e.Source], e.ID)
	s.incident[e.Target] = appendUnique(s.incident[e.Target], e.ID)
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// flushLocked writes the snapshot and WAL tail to stable storage. Storage
// I/O errors are logged but never surfaced to the caller (§4.1/§7
// StorageFailure: "log and continue in-memory; callers see success unless
// the snapshot write raises" — a raised snapshot write here means the
// caller-visible mutation already happened, so we only log).
func (s *Store) flushLocked() {
	if s.snapshotPath == "" {
		return
	}
	snap := snapshot{}
	for _, n := range s.nodes {
		snap.Nodes = append(snap.Nodes, n)
	}
	for _, e := range s.edges {
		snap.Edges = append(snap.Edges, e)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Msg("graphstore: marshal snapshot failed")
		return
	}
	if err := os.WriteFile(s.snapshotPath, data, 0o600); err != nil {
		log.Error().Err(err).Str("path", s.snapshotPath).Msg("graphstore: snapshot write failed")
	}
	if err := s.wal.flush(); err != nil {
		log.Error().Err(err).Msg("graphstore: wal flush failed")
	}
}

// UpsertNode creates or updates a node by id. Properties are sanitized
// identically before the in-memory update and before the WAL append so
// redaction is total (§4.1). Version increases monotonically (§3 invariant
// ii): 1 for a new node, prior+1 for an existing one, with equal-valued
// properties merged idempotently.
func (s *Store) UpsertNode(id string, kind Kind, props value.Props) (Node, error) {
	if !ValidKind(kind) {
		return Node{}, ErrInvalidType
	}
	clean := Sanitize(props)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	existing, ok := s.nodes[id]
	version := 1
	createdAt := now
	merged := clean
	if ok {
		version = existing.Version + 1
		createdAt = existing.CreatedAt
		merged = existing.Properties.Clone()
		for k, v := range clean {
			merged[k] = v
		}
	}

	n := &Node{
		ID:         id,
		Type:       kind,
		Properties: merged,
		CreatedAt:  createdAt,
		UpdatedAt:  now,
		Version:    version,
	}

	s.wal.append(walUpsertNode, n)
	s.nodes[id] = n
	s.flushLocked()

	return *n, nil
}

// deterministicEdgeID mirrors §3: "Edge id is deterministic: hash of
// source:type:target" so identical (source, type, target) triples upsert.
func deterministicEdgeID(source string, etype ERel, target string) string {
	return fmt.Sprintf("edge:%s", idgen.Prefix(fmt.Sprintf("%s:%s:%s", source, etype, target), 32))
}

// UpsertEdge creates or updates an edge between two existing nodes. It
// fails with ErrMissingNode if either endpoint is absent (§4.1), and with
// ErrInvalidType if etype is outside the closed ERel enumeration.
func (s *Store) UpsertEdge(source string, etype ERel, target string, props value.Props) (Edge, error) {
	if !ValidRel(etype) {
		return Edge{}, ErrInvalidType
	}
	clean := Sanitize(props)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[source]; !ok {
		return Edge{}, ErrMissingNode
	}
	if _, ok := s.nodes[target]; !ok {
		return Edge{}, ErrMissingNode
	}

	id := deterministicEdgeID(source, etype, target)
	now := time.Now()
	existing, ok := s.edges[id]
	version := 1
	createdAt := now
	merged := clean
	if ok {
		version = existing.Version + 1
		createdAt = existing.CreatedAt
		merged = existing.Properties.Clone()
		for k, v := range clean {
			merged[k] = v
		}
	}

	e := &Edge{
		ID:         id,
		Source:     source,
		Type:       etype,
		Target:     target,
		Properties: merged,
		CreatedAt:  createdAt,
		UpdatedAt:  now,
		Version:    version,
	}

	s.wal.append(walUpsertEdge, e)
	s.edges[id] = e
	s.indexEdge(e)
	s.flushLocked()

	return *e, nil
}

// GetNode returns the node by id, or (Node{}, false) if absent.
func (s *Store) GetNode(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Neighbors performs a breadth-first traversal from id up to
// min(depth, MaxDepth), inspecting every incident edge of the frontier at
// each level, deduping across levels, and early-terminating once the
// discovered set reaches MaxNeighbors (§4.1). Depth 0 always returns
// empty. etypes, if non-empty, filters which edge types are followed.
func (s *Store) Neighbors(id string, etypes []ERel, depth int) []Node {
	if depth <= 0 {
		return nil
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	allow := func(ERel) bool { return true }
	if len(etypes) > 0 {
		set := make(map[ERel]bool, len(etypes))
		for _, t := range etypes {
			set[t] = true
		}
		allow = func(r ERel) bool { return set[r] }
	}

	seen := map[string]bool{id: true}
	var result []Node
	frontier := []string{id}

	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []string
		for _, current := range frontier {
			for _, edgeID := range s.incident[current] {
				e, ok := s.edges[edgeID]
				if !ok || !allow(e.Type) {
					continue
				}
				var neighborID string
				switch current {
				case e.Source:
					neighborID = e.Target
				case e.Target:
					neighborID = e.Source
				default:
					continue
				}
				if neighborID == id || seen[neighborID] {
					continue
				}
				seen[neighborID] = true
				if n, ok := s.nodes[neighborID]; ok {
					result = append(result, *n)
					next = append(next, neighborID)
				}
				if len(result) >= MaxNeighbors {
					log.Warn().Str("seed", id).Int("depth_reached", level+1).
						Msg("graphstore: neighbor traversal truncated at MaxNeighbors")
					return result
				}
			}
		}
		frontier = next
	}

	return result
}

// Statistics summarizes the current node/edge population (§9 supplement).
func (s *Store) Statistics() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		NodeCount:   len(s.nodes),
		EdgeCount:   len(s.edges),
		NodesByKind: make(map[Kind]int),
		EdgesByType: make(map[ERel]int),
	}
	for _, n := range s.nodes {
		stats.NodesByKind[n.Type]++
	}
	for _, e := range s.edges {
		stats.EdgesByType[e.Type]++
	}
	return stats
}

// snapshotAllNodes returns every node, sorted by id for deterministic
// iteration (used by query.go).
func (s *Store) snapshotAllNodes() []Node {
	return s.AllNodes()
}

// AllNodes returns every node, sorted by id for deterministic iteration.
// Used by the planner (seed-procedure scoring, §4.4) and the reasoner
// (seed scoring, §4.7), both of which scan the whole node population.
func (s *Store) AllNodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

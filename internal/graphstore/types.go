// Package graphstore implements the versioned property-graph for knowledge
// and provenance: nodes, edges, PII-safe upserts, bounded traversal, and a
// parameterized query surface. Grounded on the teacher's graph/store
// package (MemStore[S], the Store interface) generalized from a single
// typed state blob to a node/edge graph.
package graphstore

import (
	"errors"
	"time"

	"github.com/workgraph/engine/internal/value"
)

// Kind is the closed enumeration of node types.
type Kind string

const (
	KindRule      Kind = "Rule"
	KindConcept   Kind = "Concept"
	KindProcedure Kind = "Procedure"
	KindStep      Kind = "Step"
	KindEntity    Kind = "Entity"
	KindSourceDoc Kind = "SourceDoc"
	KindArtifact  Kind = "Artifact"
	KindDecision  Kind = "Decision"
)

var validKinds = map[Kind]bool{
	KindRule: true, KindConcept: true, KindProcedure: true, KindStep: true,
	KindEntity: true, KindSourceDoc: true, KindArtifact: true, KindDecision: true,
}

// ValidKind reports whether k belongs to the closed Kind enumeration.
func ValidKind(k Kind) bool { return validKinds[k] }

// ERel is the closed enumeration of edge types.
type ERel string

const (
	RelDependsOn ERel = "depends_on"
	RelPartOf    ERel = "part_of"
	RelImplements ERel = "implements"
	RelCites     ERel = "cites"
	RelProduces  ERel = "produces"
	RelVariantOf ERel = "variant_of"
	RelPrereq    ERel = "prereq"
)

var validRels = map[ERel]bool{
	RelDependsOn: true, RelPartOf: true, RelImplements: true, RelCites: true,
	RelProduces: true, RelVariantOf: true, RelPrereq: true,
}

// ValidRel reports whether r belongs to the closed ERel enumeration.
func ValidRel(r ERel) bool { return validRels[r] }

// Node is a versioned entity in the property graph.
type Node struct {
	ID         string       `json:"id"`
	Type       Kind         `json:"type"`
	Properties value.Props  `json:"properties"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Version    int          `json:"version"`
}

// Edge is a versioned relation between two nodes.
type Edge struct {
	ID         string      `json:"id"`
	Source     string      `json:"source"`
	Type       ERel        `json:"type"`
	Target     string      `json:"target"`
	Properties value.Props `json:"properties"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Version    int         `json:"version"`
}

// Stats summarizes the current contents of a GraphStore (§9 supplement:
// graph statistics endpoint, grounded on original_source's store.py stats
// counters).
type Stats struct {
	NodeCount    int            `json:"node_count"`
	EdgeCount    int            `json:"edge_count"`
	NodesByKind  map[Kind]int   `json:"nodes_by_kind"`
	EdgesByType  map[ERel]int   `json:"edges_by_type"`
}

// Errors in the GraphStore taxonomy (§7).
var (
	ErrInvalidType = errors.New("graphstore: invalid node or edge type")
	ErrMissingNode = errors.New("graphstore: edge endpoint missing")
)

// Traversal limits (§4.1).
const (
	MaxDepth     = 10
	MaxNeighbors = 1000
	MaxQueryRows = 100
)

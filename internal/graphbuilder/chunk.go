// Package graphbuilder extracts procedures, steps, entities, concepts,
// rules, and source documents from ingested text chunks and wires them
// into a graphstore.Store via part_of/prereq/cites edges. Grounded on the
// teacher's node/edge construction idiom (graph/node.go, graph/edge.go),
// applied to knowledge nodes instead of execution nodes.
package graphbuilder

// Chunk is a unit of ingested text with caller-supplied metadata (page,
// section, entities, categories, ...). Chunk ingestion itself is out of
// core scope (§1); GraphBuilder only consumes already-produced chunks.
type Chunk struct {
	ID       string
	Content  string
	Metadata map[string]any
}

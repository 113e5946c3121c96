package graphbuilder

import (
	"fmt"

	"github.com/workgraph/engine/internal/graphstore"
	"github.com/workgraph/engine/internal/idgen"
	"github.com/workgraph/engine/internal/value"
)

// KnowledgeResult is the output of BuildKnowledgeGraphFromChunks.
type KnowledgeResult struct {
	Entities   []string
	Concepts   []string
	Rules      []string
	SourceDocs []SourceDoc
	Edges      []graphstore.Edge
}

// BuildKnowledgeGraphFromChunks is the second GraphBuilder entry point of
// §4.2: it consumes enriched chunks carrying explicit `entities` and
// `categories` metadata and upserts Entity/Concept/Rule/SourceDoc nodes
// plus cites edges. Entity id derives from a hash of its name, Concept id
// from its category string, Rule id from its matched text — all
// deterministic per §3/§9.
func BuildKnowledgeGraphFromChunks(store *graphstore.Store, chunks []Chunk) (KnowledgeResult, error) {
	result := KnowledgeResult{}
	docs := ExtractSourceDocs(chunks)
	result.SourceDocs = docs

	for _, doc := range docs {
		id, kind, props := SourceDocNode(doc)
		if _, err := store.UpsertNode(id, kind, props); err != nil {
			return result, err
		}
	}

	for _, c := range chunks {
		for _, entityName := range stringSlice(c.Metadata["entities"]) {
			id := fmt.Sprintf("entity:%s", idgen.Prefix(entityName, 16))
			if _, err := store.UpsertNode(id, graphstore.KindEntity, value.Props{"name": value.String(entityName)}); err != nil {
				return result, err
			}
			result.Entities = appendUniqueStr(result.Entities, id)
			if err := citeSourceDocs(store, id, c, docs, &result.Edges); err != nil {
				return result, err
			}
		}

		for _, category := range stringSlice(c.Metadata["categories"]) {
			id := fmt.Sprintf("concept:%s", idgen.Prefix(category, 16))
			if _, err := store.UpsertNode(id, graphstore.KindConcept, value.Props{"category": value.String(category)}); err != nil {
				return result, err
			}
			result.Concepts = appendUniqueStr(result.Concepts, id)
			if err := citeSourceDocs(store, id, c, docs, &result.Edges); err != nil {
				return result, err
			}
		}

		if ruleText, ok := c.Metadata["rule"].(string); ok && ruleText != "" {
			id := fmt.Sprintf("rule:%s", idgen.Prefix(ruleText, 16))
			if _, err := store.UpsertNode(id, graphstore.KindRule, value.Props{"text": value.String(ruleText)}); err != nil {
				return result, err
			}
			result.Rules = appendUniqueStr(result.Rules, id)
			if err := citeSourceDocs(store, id, c, docs, &result.Edges); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

func citeSourceDocs(store *graphstore.Store, nodeID string, c Chunk, docs []SourceDoc, edges *[]graphstore.Edge) error {
	key, ok := sourceKey(c)
	if !ok {
		return nil
	}
	for _, doc := range docs {
		if fmt.Sprintf("source:%s", idgen.Prefix(key, 16)) != doc.ID {
			continue
		}
		e, err := store.UpsertEdge(nodeID, graphstore.RelCites, doc.ID, value.Props{
			"chunk_id": value.String(c.ID),
		})
		if err != nil {
			return err
		}
		*edges = append(*edges, e)
	}
	return nil
}

func stringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func appendUniqueStr(list []string, id string) []string {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

package graphbuilder

import (
	"fmt"

	"github.com/workgraph/engine/internal/graphstore"
	"github.com/workgraph/engine/internal/idgen"
	"github.com/workgraph/engine/internal/value"
)

// SourceDoc is a Kind=SourceDoc node, one per distinct (page) or (section)
// found in chunk metadata (§4.2).
type SourceDoc struct {
	ID      string
	Page    string
	Section string
}

func sourceKey(c Chunk) (string, bool) {
	if page, ok := c.Metadata["page"]; ok {
		return fmt.Sprintf("page:%v", page), true
	}
	if section, ok := c.Metadata["section"]; ok {
		return fmt.Sprintf("section:%v", section), true
	}
	return "", false
}

// ExtractSourceDocs returns one SourceDoc per distinct (page)/(section) in
// the chunk batch, deduplicated by a seen-set of canonical source ids.
func ExtractSourceDocs(chunks []Chunk) []SourceDoc {
	seen := map[string]bool{}
	var docs []SourceDoc
	for _, c := range chunks {
		key, ok := sourceKey(c)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true

		doc := SourceDoc{ID: fmt.Sprintf("source:%s", idgen.Prefix(key, 16))}
		if page, ok := c.Metadata["page"]; ok {
			doc.Page = fmt.Sprintf("%v", page)
		}
		if section, ok := c.Metadata["section"]; ok {
			doc.Section = fmt.Sprintf("%v", section)
		}
		docs = append(docs, doc)
	}
	return docs
}

// SourceDocNode builds the graphstore Node for a SourceDoc.
func SourceDocNode(d SourceDoc) (string, graphstore.Kind, value.Props) {
	props := value.Props{}
	if d.Page != "" {
		props["page"] = value.String(d.Page)
	}
	if d.Section != "" {
		props["section"] = value.String(d.Section)
	}
	return d.ID, graphstore.KindSourceDoc, props
}

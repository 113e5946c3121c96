package graphbuilder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/workgraph/engine/internal/graphstore"
	"github.com/workgraph/engine/internal/idgen"
	"github.com/workgraph/engine/internal/value"
)

// procedureNameRegexes is the ordered verb/phrase family scanned to name a
// procedure from concatenated chunk content (§4.2 Procedure detection).
// Order matters: the first pattern to match wins.
var procedureNameRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bhow to\s+([a-z][a-z0-9 _-]{2,60})`),
	regexp.MustCompile(`(?i)\bsteps to\s+([a-z][a-z0-9 _-]{2,60})`),
	regexp.MustCompile(`(?i)\b(?:craft|create|make|build|construct)(?:ing)?\s+(?:an?\s+)?([a-z][a-z0-9 _-]{2,60})`),
	regexp.MustCompile(`(?i)\bprocess of\s+([a-z][a-z0-9 _-]{2,60})`),
	regexp.MustCompile(`(?i)([a-z][a-z0-9 _-]{2,60})\s+(?:procedure|process|creation|crafting)\b`),
}

// Procedure is a Kind=Procedure node plus its classification subtype.
type Procedure struct {
	ID      string
	Name    string
	Subtype string
}

// classifySubtype classifies a procedure by keyword presence in its detected
// name (§4.2): {potion, alchemical, brew} -> crafting;
// {character, build, level} -> character_creation; else general.
func classifySubtype(name string) string {
	lower := strings.ToLower(name)
	for _, kw := range []string{"potion", "alchemical", "brew"} {
		if strings.Contains(lower, kw) {
			return "crafting"
		}
	}
	for _, kw := range []string{"character", "build", "level"} {
		if strings.Contains(lower, kw) {
			return "character_creation"
		}
	}
	return "general"
}

// DetectProcedure concatenates every chunk's content and matches the
// ordered regex family for a procedure name; the first match wins. Returns
// (Procedure{}, false) if nothing matched, signalling the caller to fall
// back to synthesized steps.
func DetectProcedure(chunks []Chunk) (Procedure, bool) {
	var all strings.Builder
	for _, c := range chunks {
		all.WriteString(c.Content)
		all.WriteString(" ")
	}
	text := all.String()

	for _, re := range procedureNameRegexes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		return Procedure{
			ID:      procedureID(name),
			Name:    name,
			Subtype: classifySubtype(name),
		}, true
	}
	return Procedure{}, false
}

// procedureID is deterministic: proc:<sha256(lowercased name)[0:16]>
// (§4.2, §9: "lowercase for procedure names").
func procedureID(name string) string {
	return fmt.Sprintf("proc:%s", idgen.Prefix(strings.ToLower(name), 16))
}

// ProcedureNode builds the graphstore Node for a detected procedure.
func ProcedureNode(p Procedure) (string, graphstore.Kind, value.Props) {
	return p.ID, graphstore.KindProcedure, value.Props{
		"name":    value.String(p.Name),
		"subtype": value.String(p.Subtype),
	}
}

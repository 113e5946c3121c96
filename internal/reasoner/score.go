package reasoner

import "github.com/workgraph/engine/internal/graphstore"

// focusMinScore is the minimum combined neighbor score to select a hop's
// focus (§4.7 step ii: "Pick top if > 0.1" — same threshold the planner
// uses for seeding).
const focusMinScore = 0.1

// typeWeight returns the per-Kind weight contribution to neighbor scoring
// (§4.7 step ii).
func typeWeight(k graphstore.Kind) float64 {
	switch k {
	case graphstore.KindProcedure:
		return 0.9
	case graphstore.KindStep:
		return 0.8
	case graphstore.KindDecision:
		return 0.8
	case graphstore.KindRule:
		return 0.7
	case graphstore.KindConcept:
		return 0.6
	case graphstore.KindEntity:
		return 0.5
	case graphstore.KindSourceDoc:
		return 0.4
	case graphstore.KindArtifact:
		return 0.3
	default:
		return 0
	}
}

// focusQuery builds the retrieval query for a selected focus node (§4.7
// step iii): "goal + focus_name + {rules steps requirements | definition
// examples mechanics}" keyed on focus type — procedural node kinds pull
// the "how it's done" suffix, conceptual kinds pull the "what it is" one.
func focusQuery(goal, focusName string, focusKind graphstore.Kind) string {
	suffix := "definition examples mechanics"
	switch focusKind {
	case graphstore.KindProcedure, graphstore.KindStep, graphstore.KindRule:
		suffix = "rules steps requirements"
	}
	return goal + " " + focusName + " " + suffix
}

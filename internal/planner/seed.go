package planner

import (
	"sort"

	"github.com/workgraph/engine/internal/graphstore"
	"github.com/workgraph/engine/internal/textutil"
)

// seedProcedureMinScore is the minimum Jaccard score to accept a seeded
// procedure (§4.4 phase 1).
const seedProcedureMinScore = 0.1

// seededStep is a Step node paired with its ordering key, resolved once so
// later phases never re-read the property bag.
type seededStep struct {
	node       graphstore.Node
	stepNumber int
}

// seedProcedure scores every Procedure node in store by Jaccard similarity
// of the tokenized goal against name+description, keeping the best match
// if it clears seedProcedureMinScore (§4.4 phase 1).
func seedProcedure(store *graphstore.Store, goal string) (graphstore.Node, bool) {
	var best graphstore.Node
	bestScore := 0.0
	found := false

	for _, n := range store.AllNodes() {
		if n.Type != graphstore.KindProcedure {
			continue
		}
		text := propString(n.Properties, "name") + " " + propString(n.Properties, "description")
		score := textutil.Jaccard(goal, text)
		if score > bestScore {
			best = n
			bestScore = score
			found = true
		}
	}

	if !found || bestScore <= seedProcedureMinScore {
		return graphstore.Node{}, false
	}
	return best, true
}

// expandSteps returns every Step neighbor of procedure along part_of at
// depth 1, ordered ascending by step_number (§4.4 phase 2).
func expandSteps(store *graphstore.Store, procedure graphstore.Node) []seededStep {
	neighbors := store.Neighbors(procedure.ID, []graphstore.ERel{graphstore.RelPartOf}, 1)

	var steps []seededStep
	for _, n := range neighbors {
		if n.Type != graphstore.KindStep {
			continue
		}
		steps = append(steps, seededStep{node: n, stepNumber: propInt(n.Properties, "step_number", missingStepNumber)})
	}

	sort.SliceStable(steps, func(i, j int) bool { return steps[i].stepNumber < steps[j].stepNumber })
	return steps
}

package graphbuilder

import (
	"github.com/workgraph/engine/internal/graphstore"
	"github.com/workgraph/engine/internal/value"
)

// Result is the output of building a procedure from a chunk batch.
type Result struct {
	Procedure Procedure
	Steps     []Step
	SourceDocs []SourceDoc
	Edges     []graphstore.Edge
}

// BuildProcedureFromChunks implements the GraphBuilder entry point of
// §4.2: given a sequence of chunks, produce (Procedure, []Step, []Edge,
// []SourceDoc) and persist them into store. Procedure/step ids are
// content-derivable (§3), so repeated calls with identical chunks produce
// an identical procedure.id (§8 Determinism property).
//
// Edge construction follows §4.2 exactly, including the pinned
// over-connection behavior from §10 Open Question 2: every step cites
// every source doc discovered in the batch, not just the doc its own
// chunk belongs to.
func BuildProcedureFromChunks(store *graphstore.Store, chunks []Chunk) (Result, error) {
	proc, ok := DetectProcedure(chunks)
	if !ok {
		proc = Procedure{ID: procedureID("general procedure"), Name: "general procedure", Subtype: "general"}
	}
	steps := ExtractSteps(chunks)
	docs := ExtractSourceDocs(chunks)

	id, kind, props := ProcedureNode(proc)
	if _, err := store.UpsertNode(id, kind, props); err != nil {
		return Result{}, err
	}

	for _, doc := range docs {
		id, kind, props := SourceDocNode(doc)
		if _, err := store.UpsertNode(id, kind, props); err != nil {
			return Result{}, err
		}
	}

	var edges []graphstore.Edge
	for _, step := range steps {
		id, kind, props := StepNode(step)
		if _, err := store.UpsertNode(id, kind, props); err != nil {
			return Result{}, err
		}

		e, err := store.UpsertEdge(proc.ID, graphstore.RelPartOf, step.ID, value.Props{
			"step_number": value.Number(float64(step.StepNumber)),
		})
		if err != nil {
			return Result{}, err
		}
		edges = append(edges, e)

		for _, doc := range docs {
			e, err := store.UpsertEdge(step.ID, graphstore.RelCites, doc.ID, value.Props{
				"chunk_id":   value.String(step.ChunkID),
				"confidence": value.Number(0.8),
			})
			if err != nil {
				return Result{}, err
			}
			edges = append(edges, e)
		}
	}

	for i := 1; i < len(steps); i++ {
		later, earlier := steps[i], steps[i-1]
		e, err := store.UpsertEdge(later.ID, graphstore.RelPrereq, earlier.ID, value.Props{
			"sequence": value.Number(float64(i)),
		})
		if err != nil {
			return Result{}, err
		}
		edges = append(edges, e)
	}

	return Result{Procedure: proc, Steps: steps, SourceDocs: docs, Edges: edges}, nil
}

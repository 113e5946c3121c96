package graphbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgraph/engine/internal/graphstore"
)

func newStore(t *testing.T) *graphstore.Store {
	t.Helper()
	s, err := graphstore.New(graphstore.Options{})
	require.NoError(t, err)
	return s
}

func potionChunks() []Chunk {
	return []Chunk{
		{ID: "c1", Content: "How to craft a healing potion for beginners.", Metadata: map[string]any{"page": 1}},
		{ID: "c2", Content: "1. Gather moonflower petals and spring water.", Metadata: map[string]any{"page": 1}},
		{ID: "c3", Content: "2. Heat the water to a gentle simmer.", Metadata: map[string]any{"page": 2}},
		{ID: "c4", Content: "3. Stir in the moonflower petals for five minutes.", Metadata: map[string]any{"page": 2}},
		{ID: "c5", Content: "4. Strain and bottle the potion.", Metadata: map[string]any{"page": 3}},
	}
}

func TestBuildProcedureFromChunksDeterministicID(t *testing.T) {
	s1 := newStore(t)
	r1, err := BuildProcedureFromChunks(s1, potionChunks())
	require.NoError(t, err)

	s2 := newStore(t)
	r2, err := BuildProcedureFromChunks(s2, potionChunks())
	require.NoError(t, err)

	assert.Equal(t, r1.Procedure.ID, r2.Procedure.ID)
	assert.Equal(t, "crafting", r1.Procedure.Subtype)
}

func TestBuildProcedureStepsOrderedAndLinked(t *testing.T) {
	s := newStore(t)
	r, err := BuildProcedureFromChunks(s, potionChunks())
	require.NoError(t, err)

	require.Len(t, r.Steps, 4)
	for i, step := range r.Steps {
		assert.Equal(t, i+1, step.StepNumber)
	}

	neighbors := s.Neighbors(r.Procedure.ID, []graphstore.ERel{graphstore.RelPartOf}, 1)
	assert.Len(t, neighbors, 4)
}

func TestBuildProcedureCitesEverySourceDocPerStep(t *testing.T) {
	s := newStore(t)
	r, err := BuildProcedureFromChunks(s, potionChunks())
	require.NoError(t, err)

	require.Len(t, r.SourceDocs, 3)
	for _, step := range r.Steps {
		cites := s.Neighbors(step.ID, []graphstore.ERel{graphstore.RelCites}, 1)
		assert.Len(t, cites, 3, "every step must cite every source doc in the batch")
	}
}

func TestBuildProcedureSynthesizesStepsWhenNoPatternMatches(t *testing.T) {
	s := newStore(t)
	chunks := []Chunk{
		{ID: "a", Content: "Some unrelated prose about weather."},
		{ID: "b", Content: "More prose, still no list markers here."},
	}
	r, err := BuildProcedureFromChunks(s, chunks)
	require.NoError(t, err)
	assert.Len(t, r.Steps, 2)
}

func TestBuildKnowledgeGraphFromChunks(t *testing.T) {
	s := newStore(t)
	chunks := []Chunk{
		{
			ID:      "k1",
			Content: "Dragons breathe fire.",
			Metadata: map[string]any{
				"page":       5,
				"entities":   []any{"Dragon"},
				"categories": []any{"bestiary"},
				"rule":       "Fire damage ignores cold resistance.",
			},
		},
	}
	res, err := BuildKnowledgeGraphFromChunks(s, chunks)
	require.NoError(t, err)
	assert.Len(t, res.Entities, 1)
	assert.Len(t, res.Concepts, 1)
	assert.Len(t, res.Rules, 1)
}

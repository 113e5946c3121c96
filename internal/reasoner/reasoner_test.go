package reasoner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgraph/engine/internal/graphstore"
	"github.com/workgraph/engine/internal/llm"
	"github.com/workgraph/engine/internal/llm/mock"
	"github.com/workgraph/engine/internal/value"
)

func TestRunFallsBackOnEmptyGraph(t *testing.T) {
	store, err := graphstore.New(graphstore.Options{})
	require.NoError(t, err)

	r := New(store, nil)
	trace := r.Run(context.Background(), "how do I brew a healing potion", 5)

	assert.Equal(t, "fallback", trace.SeedNode.ID)
	assert.Empty(t, trace.Hops)
	assert.NotEmpty(t, trace.Answer)
	assert.GreaterOrEqual(t, trace.DurationS, 0.0)
}

func newPotionGraph(t *testing.T) *graphstore.Store {
	t.Helper()
	store, err := graphstore.New(graphstore.Options{})
	require.NoError(t, err)

	_, err = store.UpsertNode("proc:potion", graphstore.KindProcedure, value.Props{
		"name":        value.String("craft healing potion"),
		"description": value.String("steps to craft a healing potion"),
	})
	require.NoError(t, err)
	_, err = store.UpsertNode("step:1", graphstore.KindStep, value.Props{
		"name":        value.String("gather ingredients"),
		"description": value.String("gather healing potion ingredients"),
		"step_number": value.Number(1),
	})
	require.NoError(t, err)
	_, err = store.UpsertEdge("proc:potion", graphstore.RelPartOf, "step:1", value.Props{})
	require.NoError(t, err)

	return store
}

func TestRunWalksFromSeedAndStopsOnNoFocus(t *testing.T) {
	store := newPotionGraph(t)
	r := New(store, nil)

	trace := r.Run(context.Background(), "how do I craft a healing potion", 5)

	assert.Equal(t, "proc:potion", trace.SeedNode.ID)
	require.NotEmpty(t, trace.Hops)
	assert.Equal(t, "step:1", trace.Hops[0].SelectedFocus)
}

func TestRunRetrievesContextPerHop(t *testing.T) {
	store := newPotionGraph(t)
	retriever := &mock.Retriever{Chunks: []llm.Chunk{
		{ID: "c1", Content: "craft healing potion ingredients list", Metadata: map[string]any{"page": 3}},
	}}
	r := New(store, retriever)

	trace := r.Run(context.Background(), "how do I craft a healing potion", 5)

	require.NotEmpty(t, trace.Hops)
	assert.NotEmpty(t, trace.Hops[0].RetrievedContext)
	assert.NotEmpty(t, trace.Sources)
	assert.Equal(t, "3", trace.Sources[0].Page)
	assert.NotEmpty(t, retriever.Queries())
}

func TestHopConfidenceCapsAtOne(t *testing.T) {
	items := make([]ContextItem, 10)
	for i := range items {
		items[i] = ContextItem{Content: "craft healing potion"}
	}
	c := hopConfidence(20, true, items, "craft healing potion")
	assert.LessOrEqual(t, c, 1.0)
}

func TestDecayedMeanWeightsEarlierHopsMore(t *testing.T) {
	uniform := decayedMean([]float64{0.8, 0.8, 0.8})
	assert.InDelta(t, 0.8, uniform, 1e-9)

	frontLoaded := decayedMean([]float64{1.0, 0.0})
	backLoaded := decayedMean([]float64{0.0, 1.0})
	assert.Greater(t, frontLoaded, backLoaded)
}

func TestRegroundPrunesToTopFive(t *testing.T) {
	items := make([]ContextItem, 8)
	for i := range items {
		items[i] = ContextItem{Content: "irrelevant filler text"}
	}
	items[0].Content = "craft healing potion"
	out := reground(items, "craft healing potion")
	assert.Len(t, out, 5)
	assert.Equal(t, "craft healing potion", out[0].Content)
}

func TestDedupeSourcesByKey(t *testing.T) {
	items := []ContextItem{
		{Source: "c1", Page: "1"},
		{Source: "c1", Page: "1"},
		{Source: "c2", Page: "1"},
	}
	sources := dedupeSources(items)
	assert.Len(t, sources, 2)
}

func TestMaxHopsClampedToFive(t *testing.T) {
	store := newPotionGraph(t)
	r := New(store, nil)
	trace := r.Run(context.Background(), "how do I craft a healing potion", 99)
	assert.LessOrEqual(t, len(trace.Hops), MaxHops)
}

package graphstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgraph/engine/internal/value"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Options{})
	require.NoError(t, err)
	return s
}

func TestUpsertNodeVersioning(t *testing.T) {
	s := newTestStore(t)

	n, err := s.UpsertNode("n1", KindConcept, value.Props{"name": value.String("Fire")})
	require.NoError(t, err)
	assert.Equal(t, 1, n.Version)

	n2, err := s.UpsertNode("n1", KindConcept, value.Props{"name": value.String("Fire")})
	require.NoError(t, err)
	assert.Equal(t, 2, n2.Version)
	assert.Equal(t, n.CreatedAt, n2.CreatedAt)
}

func TestUpsertNodeInvalidType(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpsertNode("n1", Kind("Bogus"), nil)
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestUpsertEdgeMissingNode(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpsertNode("a", KindConcept, nil)
	require.NoError(t, err)

	_, err = s.UpsertEdge("a", RelCites, "missing", nil)
	assert.ErrorIs(t, err, ErrMissingNode)
}

func TestUpsertEdgeDeterministicID(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.UpsertNode("a", KindConcept, nil)
	_, _ = s.UpsertNode("b", KindConcept, nil)

	e1, err := s.UpsertEdge("a", RelCites, "b", value.Props{"confidence": value.Number(0.5)})
	require.NoError(t, err)
	e2, err := s.UpsertEdge("a", RelCites, "b", value.Props{"confidence": value.Number(0.9)})
	require.NoError(t, err)

	assert.Equal(t, e1.ID, e2.ID)
	assert.Equal(t, 2, e2.Version)
}

func TestPIIRedaction(t *testing.T) {
	s := newTestStore(t)
	n, err := s.UpsertNode("u1", KindEntity, value.Props{
		"email": value.String("alice@example.com"),
		"name":  value.String("Alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, RedactionSentinel, n.Properties["email"].String())
	assert.Equal(t, "Alice", n.Properties["name"].String())
}

func TestTruncationOfLongStrings(t *testing.T) {
	s := newTestStore(t)
	long := make([]byte, 1500)
	for i := range long {
		long[i] = 'x'
	}
	n, err := s.UpsertNode("doc1", KindSourceDoc, value.Props{"content": value.String(string(long))})
	require.NoError(t, err)
	assert.Contains(t, n.Properties["content"].String(), TruncationMarker)
	assert.LessOrEqual(t, len(n.Properties["content"].String()), 1000+len(TruncationMarker))
}

func TestNeighborsDepthZeroIsEmpty(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.UpsertNode("a", KindConcept, nil)
	_, _ = s.UpsertNode("b", KindConcept, nil)
	_, _ = s.UpsertEdge("a", RelCites, "b", nil)

	assert.Empty(t, s.Neighbors("a", nil, 0))
}

func TestNeighborsBFSAndFilter(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		_, _ = s.UpsertNode(id, KindConcept, nil)
	}
	_, _ = s.UpsertEdge("a", RelCites, "b", nil)
	_, _ = s.UpsertEdge("b", RelPartOf, "c", nil)
	_, _ = s.UpsertEdge("a", RelPrereq, "d", nil)

	oneHop := s.Neighbors("a", nil, 1)
	assert.Len(t, oneHop, 2)

	filtered := s.Neighbors("a", []ERel{RelCites}, 1)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].ID)

	twoHop := s.Neighbors("a", nil, 2)
	ids := map[string]bool{}
	for _, n := range twoHop {
		ids[n.ID] = true
	}
	assert.True(t, ids["c"])
}

func TestQueryMatchKindProperty(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.UpsertNode("p1", KindProcedure, value.Props{"name": value.String("craft_potion")})
	_, _ = s.UpsertNode("p2", KindProcedure, value.Props{"name": value.String("brew_tea")})
	_, _ = s.UpsertNode("c1", KindConcept, value.Props{"name": value.String("craft_potion")})

	results, err := s.Query(MatchKindProperty, map[string]any{
		"kind": "Procedure", "key": "name", "value": "craft_potion",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID)
}

func TestQueryCapsResultSize(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < MaxQueryRows+20; i++ {
		_, _ = s.UpsertNode(idFor(i), KindConcept, value.Props{"tag": value.String("x")})
	}
	results, err := s.Query(`properties["tag"] == params["tag"]`, map[string]any{"tag": "x"})
	require.NoError(t, err)
	assert.Len(t, results, MaxQueryRows)
}

func idFor(i int) string { return fmt.Sprintf("node_%04d", i) }

func TestStatistics(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.UpsertNode("a", KindConcept, nil)
	_, _ = s.UpsertNode("b", KindRule, nil)
	_, _ = s.UpsertEdge("a", RelCites, "b", nil)

	stats := s.Statistics()
	assert.Equal(t, 2, stats.NodeCount)
	assert.Equal(t, 1, stats.EdgeCount)
	assert.Equal(t, 1, stats.NodesByKind[KindConcept])
}

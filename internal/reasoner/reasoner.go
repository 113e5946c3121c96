package reasoner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/workgraph/engine/internal/graphstore"
	"github.com/workgraph/engine/internal/llm"
	"github.com/workgraph/engine/internal/textutil"
)

// seedMinScore is the minimum Jaccard score to accept a seeded node (§4.7
// "Seeding" — same 0.1 threshold the planner uses for procedure seeding).
const seedMinScore = 0.1

// Reasoner runs the graph-guided multi-hop reasoning loop over a
// graphstore.Store, retrieving grounding context through an llm.Retriever.
// The retriever is optional: a nil Retriever degrades every hop's retrieval
// step to "no context retrieved" rather than failing the run, mirroring
// §9's "abstract collaborators, accepted as constructor parameters."
type Reasoner struct {
	store     *graphstore.Store
	retriever llm.Retriever
}

// New builds a Reasoner over store, retrieving grounding context through
// retriever (nil is accepted).
func New(store *graphstore.Store, retriever llm.Retriever) *Reasoner {
	return &Reasoner{store: store, retriever: retriever}
}

// Run walks the graph from a goal-seeded node for up to maxHops hops,
// producing a full ReasoningTrace (§4.7).
func (r *Reasoner) Run(ctx context.Context, goal string, maxHops int) ReasoningTrace {
	start := time.Now()
	if maxHops <= 0 || maxHops > MaxHops {
		maxHops = MaxHops
	}

	seed, ok := r.seed(goal)
	if !ok {
		return r.fallback(ctx, goal, start)
	}

	var (
		hops        []Hop
		confidences []float64
		accumulated []ContextItem
	)
	current := seed
	visited := map[string]bool{seed.ID: true}

	for hopNumber := 1; hopNumber <= maxHops; hopNumber++ {
		neighbors := r.store.Neighbors(current.ID, nil, 1)
		focus, focusScore, focusOK := r.selectFocus(goal, neighbors, visited)

		neighborIDs := make([]string, len(neighbors))
		for i, n := range neighbors {
			neighborIDs[i] = n.ID
		}

		var retrieved []ContextItem
		reasoning := fmt.Sprintf("explored %d neighbors of %s", len(neighbors), current.ID)
		if focusOK {
			query := focusQuery(goal, propString(focus.Properties, "name"), focus.Type)
			retrieved = r.retrieve(ctx, query)
			accumulated = append(accumulated, retrieved...)
			reasoning = fmt.Sprintf("moved focus to %s (score %.2f)", focus.ID, focusScore)
		} else {
			reasoning += "; no neighbor cleared the focus threshold"
		}

		confidence := hopConfidence(len(neighbors), focusOK, retrieved, goal)

		hop := Hop{
			HopNumber:        hopNumber,
			CurrentNode:      current.ID,
			Neighbors:        neighborIDs,
			RetrievedContext: retrieved,
			Confidence:       confidence,
			Reasoning:        reasoning,
		}
		if focusOK {
			hop.SelectedFocus = focus.ID
		}
		hops = append(hops, hop)
		confidences = append(confidences, confidence)

		if hopNumber%RegroundingInterval == 0 {
			accumulated = reground(accumulated, goal)
		}

		if confidence < MinConfidence || !focusOK || hopNumber == maxHops {
			break
		}
		visited[focus.ID] = true
		current = focus
	}

	finalConfidence := decayedMean(confidences)
	sources := dedupeSources(accumulated)
	answer := synthesize(accumulated, len(hops), len(sources))

	return ReasoningTrace{
		Goal:            goal,
		SeedNode:        SeedNode{ID: seed.ID},
		Hops:            hops,
		FinalContext:    accumulated,
		Answer:          answer,
		TotalConfidence: finalConfidence,
		Sources:         sources,
		DurationS:       time.Since(start).Seconds(),
	}
}

// seed scores every node by Jaccard similarity of the goal against
// name+description, keeping the best if it clears seedMinScore (§4.7
// "Seeding").
func (r *Reasoner) seed(goal string) (graphstore.Node, bool) {
	var best graphstore.Node
	bestScore := 0.0
	found := false

	for _, n := range r.store.AllNodes() {
		score := textutil.Jaccard(goal, nameAndDescription(n.Properties))
		if score > bestScore {
			best = n
			bestScore = score
			found = true
		}
	}

	if !found || bestScore <= seedMinScore {
		return graphstore.Node{}, false
	}
	return best, true
}

// fallback builds the zero-hop, retrieval-only trace used when seeding
// fails entirely (§4.7 Seeding; §8 scenario 6: "trace.seed_node.id =
// 'fallback', |trace.hops| = 0, trace.answer non-empty, duration_s > 0").
func (r *Reasoner) fallback(ctx context.Context, goal string, start time.Time) ReasoningTrace {
	retrieved := r.retrieve(ctx, goal)
	sources := dedupeSources(retrieved)
	answer := synthesize(retrieved, 0, len(sources))

	return ReasoningTrace{
		Goal:            goal,
		SeedNode:        SeedNode{ID: "fallback"},
		Hops:            nil,
		FinalContext:    retrieved,
		Answer:          answer,
		TotalConfidence: 0,
		Sources:         sources,
		DurationS:       time.Since(start).Seconds(),
	}
}

// selectFocus scores every neighbor not yet visited (§4.7 step ii) and
// returns the top one if it clears focusMinScore.
func (r *Reasoner) selectFocus(goal string, neighbors []graphstore.Node, visited map[string]bool) (graphstore.Node, float64, bool) {
	var best graphstore.Node
	bestScore := 0.0
	found := false

	for _, n := range neighbors {
		if visited[n.ID] {
			continue
		}
		score := 0.7*textutil.Jaccard(goal, nameAndDescription(n.Properties)) + 0.3*typeWeight(n.Type)
		if score > bestScore {
			best = n
			bestScore = score
			found = true
		}
	}

	if !found || bestScore <= focusMinScore {
		return graphstore.Node{}, 0, false
	}
	return best, bestScore, true
}

// retrieve calls the configured retriever, if any, converting its chunks
// into ContextItems. A nil retriever or a retrieval error yields no context
// rather than failing the hop.
func (r *Reasoner) retrieve(ctx context.Context, query string) []ContextItem {
	if r.retriever == nil {
		return nil
	}
	chunks, err := r.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil
	}
	items := make([]ContextItem, 0, len(chunks))
	for _, c := range chunks {
		items = append(items, ContextItem{
			Content: c.Content,
			Source:  c.ID,
			Page:    fmt.Sprintf("%v", c.Metadata["page"]),
		})
	}
	return items
}

// hopConfidence implements §4.7 step iv: base 0.5 plus neighbor-count and
// focus-selected bonuses, plus a retrieval-count bonus averaged against the
// mean goal-relevance of what was retrieved, capped at 1.0.
func hopConfidence(neighborCount int, focusSelected bool, retrieved []ContextItem, goal string) float64 {
	confidence := 0.5 + min(float64(neighborCount)/10, 0.3)
	if focusSelected {
		confidence += 0.2
	}
	confidence += min(float64(len(retrieved))/5, 0.2)

	if len(retrieved) > 0 {
		sum := 0.0
		for _, item := range retrieved {
			sum += textutil.Jaccard(goal, item.Content)
		}
		mean := sum / float64(len(retrieved))
		confidence = (confidence + mean) / 2
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// reground prunes accumulated context to the top 5 items by Jaccard
// similarity to the original goal (§4.7 "Stopping": every
// RegroundingInterval hops).
func reground(items []ContextItem, goal string) []ContextItem {
	if len(items) <= 5 {
		return items
	}
	type scored struct {
		item  ContextItem
		score float64
	}
	scoredItems := make([]scored, len(items))
	for i, it := range items {
		scoredItems[i] = scored{item: it, score: textutil.Jaccard(goal, it.Content)}
	}
	sort.SliceStable(scoredItems, func(i, j int) bool { return scoredItems[i].score > scoredItems[j].score })

	out := make([]ContextItem, 0, 5)
	for i := 0; i < 5 && i < len(scoredItems); i++ {
		out = append(out, scoredItems[i].item)
	}
	return out
}

// decayedMean is the weighted mean of hop confidences with exponential
// decay w_i = 0.9^i (§4.7 "Final confidence").
func decayedMean(confidences []float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	weight := 1.0
	weightedSum, weightTotal := 0.0, 0.0
	for _, c := range confidences {
		weightedSum += weight * c
		weightTotal += weight
		weight *= 0.9
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}

// dedupeSources deduplicates accumulated context by the (source, page) key
// (§4.7 "Sources").
func dedupeSources(items []ContextItem) []SourceRef {
	seen := map[SourceRef]bool{}
	var out []SourceRef
	for _, it := range items {
		ref := SourceRef{Source: it.Source, Page: it.Page}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out
}

// synthesize assembles the trace's answer from the first 3 accumulated
// snippets (200 chars each) plus a trailing summary note (§4.7
// "Synthesis" — the reasoner never calls an LLM itself).
func synthesize(items []ContextItem, hopCount, sourceCount int) string {
	answer := ""
	for i := 0; i < 3 && i < len(items); i++ {
		snippet := items[i].Content
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		if answer != "" {
			answer += " "
		}
		answer += snippet
	}
	if answer == "" {
		answer = "No grounding context was retrieved for this goal."
	}
	return fmt.Sprintf("%s (explored %d hop(s) across %d source(s))", answer, hopCount, sourceCount)
}

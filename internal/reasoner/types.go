// Package reasoner implements the graph-guided multi-hop reasoning loop
// (§4.7): seed a node by Jaccard score, walk neighbors one hop at a time,
// retrieve grounding context per hop, decay confidence, periodically
// re-ground accumulated context back to the original goal, and stop on
// low confidence, no focus, or the hop limit. Grounded on the teacher's
// Engine.Run single-flow step loop (graph/engine.go) walking a knowledge
// graph instead of the node-execution graph.
package reasoner

// MaxHops is the hard ceiling on requested hop counts (§4.7).
const MaxHops = 5

// MinConfidence is the per-hop confidence floor below which the loop halts.
const MinConfidence = 0.3

// RegroundingInterval is how often (in hops) accumulated context is pruned
// back to the top-5 most goal-relevant items.
const RegroundingInterval = 2

// ContextItem is one piece of retrieved grounding text, carried through the
// hop loop and into the final answer/sources.
type ContextItem struct {
	Content string
	Source  string
	Page    string
}

// SourceRef is a deduplicated (source, page) pair surfaced in the trace.
type SourceRef struct {
	Source string
	Page   string
}

// SeedNode identifies the node (or the synthetic "fallback" node) a trace
// started from.
type SeedNode struct {
	ID string
}

// Hop is one iteration of the reasoning loop.
type Hop struct {
	HopNumber        int
	CurrentNode      string
	Neighbors        []string
	SelectedFocus    string // empty if no neighbor cleared the score threshold
	RetrievedContext []ContextItem
	Confidence       float64
	Reasoning        string
}

// ReasoningTrace is the full record of one Run call.
type ReasoningTrace struct {
	Goal            string
	SeedNode        SeedNode
	Hops            []Hop
	FinalContext    []ContextItem
	Answer          string
	TotalConfidence float64
	Sources         []SourceRef
	DurationS       float64
}

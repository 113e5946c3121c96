package budget

import "sort"

// Priority is the optimization objective for ModelSelector (§4.3).
type Priority string

const (
	PrioritySpeed    Priority = "speed"
	PriorityCost     Priority = "cost"
	PriorityQuality  Priority = "quality"
	PriorityBalanced Priority = "balanced"
)

// Selector implements the task-type -> model mapping of §4.3.
type Selector struct {
	Catalog *Catalog
}

// NewSelector builds a Selector over catalog.
func NewSelector(catalog *Catalog) *Selector {
	return &Selector{Catalog: catalog}
}

// Select implements the three-step selection algorithm of §4.3:
//  1. Filter by capability, falling back to "reasoning"-capable models,
//     then to a safe default if still empty.
//  2. Score candidates by priority.
//  3. If the winner's context window can't hold estimatedTokens, pick the
//     cheapest model whose context window comfortably exceeds it.
func (s *Selector) Select(taskType Capability, estimatedTokens int, priority Priority) Model {
	candidates := s.Catalog.WithCapability(taskType)
	if len(candidates) == 0 {
		candidates = s.Catalog.WithCapability(CapReasoning)
	}
	if len(candidates) == 0 {
		return safeDefaultModel()
	}

	winner := scoreAndPick(candidates, priority)

	if float64(estimatedTokens) > 0.9*float64(winner.ContextWindow) {
		if alt, ok := cheapestWithRoom(candidates, estimatedTokens); ok {
			return alt
		}
	}

	return winner
}

func scoreAndPick(candidates []Model, priority Priority) Model {
	type scored struct {
		model Model
		score float64
	}

	var maxLatency, minLatency, maxCost, minCost float64
	for i, m := range candidates {
		lat := float64(m.LatencyMS)
		cost := m.CostPer1kTokens
		if i == 0 || lat > maxLatency {
			maxLatency = lat
		}
		if i == 0 || lat < minLatency {
			minLatency = lat
		}
		if i == 0 || cost > maxCost {
			maxCost = cost
		}
		if i == 0 || cost < minCost {
			minCost = cost
		}
	}

	normalize := func(v, lo, hi float64) float64 {
		if hi <= lo {
			return 1
		}
		return (v - lo) / (hi - lo)
	}

	scoredList := make([]scored, 0, len(candidates))
	for _, m := range candidates {
		var score float64
		switch priority {
		case PrioritySpeed:
			score = 1 / safeDivisor(float64(m.LatencyMS))
		case PriorityCost:
			score = 1 / safeDivisor(m.CostPer1kTokens)
		case PriorityQuality:
			score = m.CostPer1kTokens
		default: // balanced: mean of normalized speed, cost(inverse), quality factors
			speedFactor := 1 - normalize(float64(m.LatencyMS), minLatency, maxLatency)
			costFactor := 1 - normalize(m.CostPer1kTokens, minCost, maxCost)
			qualityFactor := normalize(m.CostPer1kTokens, minCost, maxCost)
			score = (speedFactor + costFactor + qualityFactor) / 3
		}
		scoredList = append(scoredList, scored{model: m, score: score})
	}

	sort.SliceStable(scoredList, func(i, j int) bool { return scoredList[i].score > scoredList[j].score })
	return scoredList[0].model
}

func safeDivisor(v float64) float64 {
	if v <= 0 {
		return 1e-9
	}
	return v
}

func cheapestWithRoom(candidates []Model, estimatedTokens int) (Model, bool) {
	var best Model
	found := false
	for _, m := range candidates {
		if float64(m.ContextWindow) <= 1.1*float64(estimatedTokens) {
			continue
		}
		if !found || m.CostPer1kTokens < best.CostPer1kTokens {
			best = m
			found = true
		}
	}
	return best, found
}

func safeDefaultModel() Model {
	return Model{
		Name: "claude-3-haiku", Provider: "anthropic",
		CostPer1kTokens: 0.00025, LatencyMS: 400, ContextWindow: 200_000,
		Capabilities: caps(CapRetrieval, CapVerification, CapFormatting),
	}
}

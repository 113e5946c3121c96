// Package budget implements the model catalog, cost/latency estimation,
// per-role envelopes, compliance checks, model selection, and plan
// downgrade optimization of §4.3. The pricing-table shape is grounded on
// the teacher's graph/cost.go defaultModelPricing map, extended with the
// latency/context/capability fields the spec's ModelSelector needs.
package budget

// Capability is a closed tag describing what a model is suited for.
type Capability string

const (
	CapReasoning        Capability = "reasoning"
	CapRetrieval        Capability = "retrieval"
	CapVerification     Capability = "verification"
	CapSynthesis        Capability = "synthesis"
	CapComputation      Capability = "computation"
	CapComplexReasoning Capability = "complex_reasoning"
	CapComplexAnalysis  Capability = "complex_analysis"
	CapFormatting       Capability = "formatting"
)

// Model describes one entry in the model catalog (§4.3 Model catalog).
type Model struct {
	Name             string
	Provider         string
	CostPer1kTokens  float64
	LatencyMS        int
	ContextWindow    int
	Capabilities     map[Capability]bool
}

// HasCapability reports whether the model is tagged for taskType.
func (m Model) HasCapability(c Capability) bool { return m.Capabilities[c] }

func caps(list ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(list))
	for _, c := range list {
		m[c] = true
	}
	return m
}

// defaultCatalog mirrors the teacher's defaultModelPricing table
// (graph/cost.go), extended with latency/context/capability metadata.
// Prices are USD per 1k tokens, following §4.3's estimation formula
// (tokens/1000) x cost, not the teacher's per-1M convention.
var defaultCatalog = []Model{
	{
		Name: "claude-3-haiku", Provider: "anthropic",
		CostPer1kTokens: 0.00025, LatencyMS: 400, ContextWindow: 200_000,
		Capabilities: caps(CapRetrieval, CapVerification, CapFormatting),
	},
	{
		Name: "claude-3-5-sonnet", Provider: "anthropic",
		CostPer1kTokens: 0.003, LatencyMS: 900, ContextWindow: 200_000,
		Capabilities: caps(CapReasoning, CapSynthesis, CapComplexReasoning, CapComplexAnalysis),
	},
	{
		Name: "claude-3-opus", Provider: "anthropic",
		CostPer1kTokens: 0.015, LatencyMS: 1800, ContextWindow: 200_000,
		Capabilities: caps(CapReasoning, CapSynthesis, CapComplexReasoning, CapComplexAnalysis, CapVerification),
	},
	{
		Name: "gpt-4o-mini", Provider: "openai",
		CostPer1kTokens: 0.00015, LatencyMS: 500, ContextWindow: 128_000,
		Capabilities: caps(CapRetrieval, CapVerification, CapFormatting),
	},
	{
		Name: "gpt-4o", Provider: "openai",
		CostPer1kTokens: 0.0025, LatencyMS: 1000, ContextWindow: 128_000,
		Capabilities: caps(CapReasoning, CapSynthesis, CapComplexReasoning),
	},
	{
		Name: "gpt-4", Provider: "openai",
		CostPer1kTokens: 0.01, LatencyMS: 2000, ContextWindow: 8_192,
		Capabilities: caps(CapReasoning, CapSynthesis, CapComplexReasoning, CapComplexAnalysis),
	},
	{
		Name: "gemini-1.5-flash", Provider: "google",
		CostPer1kTokens: 0.000075, LatencyMS: 350, ContextWindow: 1_000_000,
		Capabilities: caps(CapRetrieval, CapVerification, CapFormatting),
	},
	{
		Name: "gemini-1.5-pro", Provider: "google",
		CostPer1kTokens: 0.00125, LatencyMS: 1200, ContextWindow: 2_000_000,
		Capabilities: caps(CapReasoning, CapSynthesis, CapComplexReasoning, CapComplexAnalysis),
	},
	{
		Name: "local-calculator", Provider: "local",
		CostPer1kTokens: 0, LatencyMS: 50, ContextWindow: 4_096,
		Capabilities: caps(CapComputation),
	},
}

// Catalog is a lookup table over Model entries, safe to hot-swap by
// reference (BudgetManager always reads through the current Catalog, not
// a cached copy — §4.3 "reads envelopes at enforcement time").
type Catalog struct {
	byName map[string]Model
	all    []Model
}

// NewDefaultCatalog returns the catalog ported from the teacher's pricing
// table.
func NewDefaultCatalog() *Catalog {
	return NewCatalog(defaultCatalog)
}

// NewCatalog builds a Catalog from an explicit model list (used when the
// catalog is loaded from the same config source as role envelopes).
func NewCatalog(models []Model) *Catalog {
	c := &Catalog{byName: make(map[string]Model, len(models)), all: models}
	for _, m := range models {
		c.byName[m.Name] = m
	}
	return c
}

// Lookup returns the model by name and whether it is known to the catalog.
func (c *Catalog) Lookup(name string) (Model, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// All returns every model in the catalog.
func (c *Catalog) All() []Model { return c.all }

// WithCapability returns models tagged for the given task-type capability.
func (c *Catalog) WithCapability(cap Capability) []Model {
	var out []Model
	for _, m := range c.all {
		if m.HasCapability(cap) {
			out = append(out, m)
		}
	}
	return out
}

// unknownModelCostPer1k and unknownModelLatencySeconds are the conservative
// defaults for a model name absent from the catalog (§4.3 Estimation:
// "unknown model uses conservative $5/1k, 2 s/task").
const (
	unknownModelCostPer1k       = 5.0
	unknownModelLatencySeconds  = 2.0
)

package budget

import "fmt"

// TaskView is the minimal projection of a planned task the budget package
// needs for estimation, compliance, and optimization. The caller
// (cmd/workgraph's toPlanView) converts a planner.WorkflowTask into a
// TaskView, so neither budget nor planner imports the other.
type TaskView struct {
	ID              string
	Type            Capability
	Model           string
	EstimatedTokens int
}

// PlanView is the minimal projection of a planned DAG the budget package
// needs.
type PlanView struct {
	ID    string
	Tasks []TaskView
}

// TaskCost is the per-task line in an Estimate (§4.3 Estimation: "Output
// includes per-task breakdown").
type TaskCost struct {
	TaskID   string
	CostUSD  float64
	TimeS    float64
}

// Estimate is the BudgetManager's cost/latency projection for a plan.
type Estimate struct {
	TotalTokens   int
	TotalCostUSD  float64
	TotalTimeS    float64
	PerTask       []TaskCost
}

// Manager estimates plan cost/latency against a Catalog (§4.3).
type Manager struct {
	Catalog *Catalog
}

// NewManager builds a Manager over catalog.
func NewManager(catalog *Catalog) *Manager {
	return &Manager{Catalog: catalog}
}

// Estimate sums (tokens/1000) x cost and latency_ms/1000 per task. A model
// name unknown to the catalog uses the conservative default pricing
// (§4.3 Estimation).
func (m *Manager) Estimate(plan PlanView) Estimate {
	est := Estimate{}
	for _, t := range plan.Tasks {
		costPer1k := unknownModelCostPer1k
		timeS := unknownModelLatencySeconds
		if model, ok := m.Catalog.Lookup(t.Model); ok {
			costPer1k = model.CostPer1kTokens
			timeS = float64(model.LatencyMS) / 1000.0
		}
		taskCost := (float64(t.EstimatedTokens) / 1000.0) * costPer1k
		est.TotalTokens += t.EstimatedTokens
		est.TotalCostUSD += taskCost
		est.TotalTimeS += timeS
		est.PerTask = append(est.PerTask, TaskCost{TaskID: t.ID, CostUSD: taskCost, TimeS: timeS})
	}
	return est
}

// modelCostPer1k returns the catalog cost for a model name, or +Inf if the
// model is unknown — used by Optimize so an unknown current model is
// always beaten by any cataloged alternative (§4.3 Optimization: "If the
// current model is unknown to the catalog, treat its cost as infinite").
func (m *Manager) modelCostPer1k(name string) float64 {
	if model, ok := m.Catalog.Lookup(name); ok {
		return model.CostPer1kTokens
	}
	return posInf
}

const posInf = 1e18

// Violation describes a single envelope breach (§4.3 Compliance).
type Violation struct {
	Dimension string
	Limit     float64
	Actual    float64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s exceeded: actual=%g limit=%g", v.Dimension, v.Actual, v.Limit)
}

// CheckCompliance compares an estimate to a role envelope on tokens, cost,
// time, and parallel tasks (§4.3 Compliance).
func CheckCompliance(est Estimate, env Envelope, parallelTasks int) (bool, []Violation) {
	var violations []Violation

	if env.MaxTotalTokens > 0 && est.TotalTokens > env.MaxTotalTokens {
		violations = append(violations, Violation{"tokens", float64(env.MaxTotalTokens), float64(est.TotalTokens)})
	}
	if env.MaxTotalCostUSD > 0 && est.TotalCostUSD > env.MaxTotalCostUSD {
		violations = append(violations, Violation{"cost", env.MaxTotalCostUSD, est.TotalCostUSD})
	}
	if env.MaxTimeS > 0 && est.TotalTimeS > env.MaxTimeS {
		violations = append(violations, Violation{"time", env.MaxTimeS, est.TotalTimeS})
	}
	if env.MaxParallelTasks > 0 && parallelTasks > env.MaxParallelTasks {
		violations = append(violations, Violation{"parallel_tasks", float64(env.MaxParallelTasks), float64(parallelTasks)})
	}

	return len(violations) == 0, violations
}

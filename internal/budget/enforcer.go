package budget

import "sort"

// typeWeight gives reasoning/synthesis tasks the highest importance
// weight, verification next, retrieval/computation the lowest (§4.3
// Optimization: "importance = dependents count + type weight").
func typeWeight(t Capability) int {
	switch t {
	case CapReasoning, CapSynthesis:
		return 3
	case CapVerification:
		return 2
	default: // retrieval, computation
		return 1
	}
}

// DependentsCounter reports how many other tasks in the plan depend on a
// given task id. The caller builds it from the plan's dependency lists
// (cmd/workgraph's dependentsCounter); budget only needs the counts.
type DependentsCounter func(taskID string) int

// EnforcementResult is the outcome of applying a role envelope to a plan
// (§4.3 PolicyEnforcer, §6 POST /plan response shape).
type EnforcementResult struct {
	Estimate              Estimate
	Compliant             bool
	Violations            []Violation
	OptimizationAttempted bool
	OptimizedPlan         *PlanView
	ApprovalCheckpoint    *ApprovalCheckpoint
}

// Enforcer applies a Budget envelope to a plan, attempting model downgrade
// optimization before falling back to an approval checkpoint (§4.3
// PolicyEnforcer).
type Enforcer struct {
	Manager  *Manager
	Selector *Selector
}

// NewEnforcer builds an Enforcer over the given Manager and Selector.
func NewEnforcer(manager *Manager, selector *Selector) *Enforcer {
	return &Enforcer{Manager: manager, Selector: selector}
}

// Enforce estimates plan, checks it against env, and — if non-compliant —
// attempts the importance-ordered downgrade search before producing an
// approval checkpoint (§4.3). Enforce is idempotent on an already-compliant
// plan: no optimization is attempted and OptimizedPlan stays nil (§8
// Round-trip property).
func (e *Enforcer) Enforce(plan PlanView, env Envelope, dependents DependentsCounter) EnforcementResult {
	est := e.Manager.Estimate(plan)
	compliant, violations := CheckCompliance(est, env, len(plan.Tasks))

	result := EnforcementResult{Estimate: est, Compliant: compliant, Violations: violations}
	if compliant {
		return result
	}

	result.OptimizationAttempted = true
	optimized, optimizedCompliant := e.optimize(plan, env, dependents)
	if optimizedCompliant {
		result.OptimizedPlan = &optimized
		result.Compliant = true
		result.Estimate = e.Manager.Estimate(optimized)
		result.Violations = nil
		return result
	}

	reason := "plan exceeds role envelope after optimization attempts"
	if len(violations) > 0 {
		reason = violations[0].String()
	}
	checkpoint := NewApprovalCheckpoint(plan.ID, e.Manager.Estimate(optimized), reason)
	result.ApprovalCheckpoint = &checkpoint
	result.OptimizedPlan = &optimized
	return result
}

// optimize sorts tasks ascending by importance and, for each, tries
// cheaper capability-matching alternatives (ascending by cost), accepting
// the first that brings the plan into compliance (§4.3 Optimization).
func (e *Enforcer) optimize(plan PlanView, env Envelope, dependents DependentsCounter) (PlanView, bool) {
	working := clonePlanView(plan)

	order := make([]int, len(working.Tasks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return importance(working.Tasks[order[a]], dependents) < importance(working.Tasks[order[b]], dependents)
	})

	if compliant, _ := CheckCompliance(e.Manager.Estimate(working), env, len(working.Tasks)); compliant {
		return working, true
	}

	for _, idx := range order {
		task := working.Tasks[idx]
		currentCost := e.Manager.modelCostPer1k(task.Model)

		alternatives := e.Selector.Catalog.WithCapability(task.Type)
		sort.SliceStable(alternatives, func(a, b int) bool {
			return alternatives[a].CostPer1kTokens < alternatives[b].CostPer1kTokens
		})

		for _, alt := range alternatives {
			if alt.CostPer1kTokens >= currentCost {
				continue
			}
			working.Tasks[idx].Model = alt.Name
			if compliant, _ := CheckCompliance(e.Manager.Estimate(working), env, len(working.Tasks)); compliant {
				return working, true
			}
		}
	}

	compliant, _ := CheckCompliance(e.Manager.Estimate(working), env, len(working.Tasks))
	return working, compliant
}

func importance(t TaskView, dependents DependentsCounter) int {
	count := 0
	if dependents != nil {
		count = dependents(t.ID)
	}
	return count + typeWeight(t.Type)
}

func clonePlanView(plan PlanView) PlanView {
	tasks := make([]TaskView, len(plan.Tasks))
	copy(tasks, plan.Tasks)
	return PlanView{ID: plan.ID, Tasks: tasks}
}

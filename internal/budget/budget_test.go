package budget

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorPrefersCapabilityMatch(t *testing.T) {
	sel := NewSelector(NewDefaultCatalog())
	m := sel.Select(CapComputation, 100, PriorityCost)
	assert.Equal(t, "local-calculator", m.Name)
}

func TestSelectorFallsBackToReasoningThenDefault(t *testing.T) {
	empty := NewCatalog(nil)
	sel := NewSelector(empty)
	m := sel.Select(CapReasoning, 100, PriorityBalanced)
	assert.Equal(t, "claude-3-haiku", m.Name)
}

func TestSelectorRespectsContextWindow(t *testing.T) {
	sel := NewSelector(NewDefaultCatalog())
	m := sel.Select(CapReasoning, 1_500_000, PriorityCost)
	assert.Equal(t, "gemini-1.5-pro", m.Name, "only gemini-1.5-pro's context window can hold this many tokens")
}

func TestManagerEstimateSumsPerTaskCosts(t *testing.T) {
	mgr := NewManager(NewDefaultCatalog())
	plan := PlanView{
		ID: "plan-1",
		Tasks: []TaskView{
			{ID: "t1", Type: CapReasoning, Model: "claude-3-5-sonnet", EstimatedTokens: 2000},
			{ID: "t2", Type: CapRetrieval, Model: "gemini-1.5-flash", EstimatedTokens: 1000},
		},
	}
	est := mgr.Estimate(plan)
	assert.Equal(t, 3000, est.TotalTokens)
	assert.InDelta(t, 2*0.003+1*0.000075, est.TotalCostUSD, 1e-9)
	assert.Len(t, est.PerTask, 2)
}

func TestManagerEstimateUsesConservativeDefaultForUnknownModel(t *testing.T) {
	mgr := NewManager(NewDefaultCatalog())
	plan := PlanView{ID: "p", Tasks: []TaskView{{ID: "t1", Type: CapReasoning, Model: "nonexistent-model", EstimatedTokens: 1000}}}
	est := mgr.Estimate(plan)
	assert.InDelta(t, 5.0, est.TotalCostUSD, 1e-9)
	assert.InDelta(t, 2.0, est.TotalTimeS, 1e-9)
}

func TestCheckComplianceFlagsEachDimension(t *testing.T) {
	env := Envelope{MaxTotalTokens: 100, MaxTotalCostUSD: 1, MaxTimeS: 10, MaxParallelTasks: 1}
	est := Estimate{TotalTokens: 200, TotalCostUSD: 2, TotalTimeS: 20}
	ok, violations := CheckCompliance(est, env, 5)
	assert.False(t, ok)
	assert.Len(t, violations, 4)
}

func TestCheckComplianceZeroLimitsAreUnbounded(t *testing.T) {
	env := Envelope{}
	est := Estimate{TotalTokens: 1_000_000, TotalCostUSD: 1000, TotalTimeS: 1000}
	ok, violations := CheckCompliance(est, env, 1000)
	assert.True(t, ok)
	assert.Empty(t, violations)
}

func TestEnforceIsIdempotentOnCompliantPlan(t *testing.T) {
	catalog := NewDefaultCatalog()
	enforcer := NewEnforcer(NewManager(catalog), NewSelector(catalog))
	plan := PlanView{
		ID:    "p",
		Tasks: []TaskView{{ID: "t1", Type: CapRetrieval, Model: "gemini-1.5-flash", EstimatedTokens: 500}},
	}
	env := defaultEnvelopes[RoleAdmin]

	result := enforcer.Enforce(plan, env, nil)
	require.True(t, result.Compliant)
	assert.False(t, result.OptimizationAttempted)
	assert.Nil(t, result.OptimizedPlan)
	assert.Nil(t, result.ApprovalCheckpoint)

	again := enforcer.Enforce(plan, env, nil)
	assert.Equal(t, result, again)
}

func TestEnforceDowngradesCheaperModelToRegainCompliance(t *testing.T) {
	catalog := NewDefaultCatalog()
	enforcer := NewEnforcer(NewManager(catalog), NewSelector(catalog))
	plan := PlanView{
		ID: "p",
		Tasks: []TaskView{
			{ID: "t1", Type: CapReasoning, Model: "claude-3-opus", EstimatedTokens: 50_000},
		},
	}
	env := Envelope{MaxTotalTokens: 100_000, MaxTotalCostUSD: 0.5, MaxTimeS: 3600, MaxParallelTasks: 10}

	result := enforcer.Enforce(plan, env, nil)
	require.True(t, result.Compliant)
	require.NotNil(t, result.OptimizedPlan)
	assert.NotEqual(t, "claude-3-opus", result.OptimizedPlan.Tasks[0].Model)
	assert.Nil(t, result.ApprovalCheckpoint)
}

func TestEnforceOptimizesImportanceAscendingFirst(t *testing.T) {
	catalog := NewDefaultCatalog()
	enforcer := NewEnforcer(NewManager(catalog), NewSelector(catalog))
	plan := PlanView{
		ID: "p",
		Tasks: []TaskView{
			{ID: "low", Type: CapRetrieval, Model: "gemini-1.5-pro", EstimatedTokens: 10_000},
			{ID: "high", Type: CapSynthesis, Model: "gemini-1.5-pro", EstimatedTokens: 10_000},
		},
	}
	env := Envelope{MaxTotalTokens: 100_000, MaxTotalCostUSD: 0.02, MaxTimeS: 3600, MaxParallelTasks: 10}
	dependents := func(id string) int { return 0 }

	result := enforcer.Enforce(plan, env, dependents)
	require.True(t, result.Compliant)
	require.NotNil(t, result.OptimizedPlan)
	assert.NotEqual(t, "gemini-1.5-pro", result.OptimizedPlan.Tasks[0].Model, "lowest-importance task (retrieval) is downgraded first")
}

func TestEnforceProducesApprovalCheckpointWhenUnsatisfiable(t *testing.T) {
	catalog := NewDefaultCatalog()
	enforcer := NewEnforcer(NewManager(catalog), NewSelector(catalog))
	plan := PlanView{
		ID: "p",
		Tasks: []TaskView{
			{ID: "t1", Type: CapComplexReasoning, Model: "claude-3-opus", EstimatedTokens: 1_000_000},
		},
	}
	env := Envelope{MaxTotalTokens: 10, MaxTotalCostUSD: 0.0001, MaxTimeS: 0.001, MaxParallelTasks: 1}

	result := enforcer.Enforce(plan, env, nil)
	assert.False(t, result.Compliant)
	require.NotNil(t, result.ApprovalCheckpoint)
	assert.Equal(t, "p", result.ApprovalCheckpoint.PlanID)
	assert.Equal(t, "pending", result.ApprovalCheckpoint.Status)
	assert.Contains(t, result.ApprovalCheckpoint.CheckpointID, "p")
}

func TestApprovalCheckpointIDIsUnpredictable(t *testing.T) {
	est := Estimate{TotalCostUSD: 10}
	a := NewApprovalCheckpoint("plan-x", est, "too expensive")
	b := NewApprovalCheckpoint("plan-x", est, "too expensive")
	assert.NotEqual(t, a.CheckpointID, b.CheckpointID, "checkpoint id must not be a pure function of plan id")
}

func TestPolicyConfigOverridesDefaultsPartially(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/policy.yaml"
	require.NoError(t, os.WriteFile(path, []byte(`
roles:
  player:
    max_total_tokens: 1234
`), 0o644))

	pc, err := LoadPolicyConfig(path)
	require.NoError(t, err)

	player := pc.Envelope(RolePlayer)
	assert.Equal(t, 1234, player.MaxTotalTokens)
	assert.Equal(t, defaultEnvelopes[RolePlayer].MaxTotalCostUSD, player.MaxTotalCostUSD)

	admin := pc.Envelope(RoleAdmin)
	assert.Equal(t, defaultEnvelopes[RoleAdmin], admin)
}

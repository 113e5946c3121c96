package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgraph/engine/internal/graphbuilder"
	"github.com/workgraph/engine/internal/graphstore"
)

func newStoreWithPotionProcedure(t *testing.T) (*graphstore.Store, string) {
	t.Helper()
	store, err := graphstore.New(graphstore.Options{})
	require.NoError(t, err)

	chunks := []graphbuilder.Chunk{
		{ID: "c1", Content: "How to craft a healing potion.\n1. Gather ingredients\n2. Boil water\n3. Add herbs\n4. Stir the mixture\n5. Bottle the potion", Metadata: map[string]any{"page": 1}},
	}
	result, err := graphbuilder.BuildProcedureFromChunks(store, chunks)
	require.NoError(t, err)
	return store, result.Procedure.ID
}

func TestPlanSeedsProcedureAndExpandsSteps(t *testing.T) {
	store, procID := newStoreWithPotionProcedure(t)
	p := New(store)

	plan, validation := p.Plan("Craft a healing potion for a level 3 character", 50_000, 300)

	assert.Equal(t, procID, plan.ProcedureID)
	assert.GreaterOrEqual(t, len(plan.Tasks), 5)
	assert.True(t, validation.Valid, validation.Errors)
	assert.Greater(t, plan.TotalEstimatedTokens, 0)
}

func TestPlanFallsBackToGenericChainWithoutProcedure(t *testing.T) {
	store, err := graphstore.New(graphstore.Options{})
	require.NoError(t, err)
	p := New(store)

	plan, validation := p.Plan("Summarize the weather report", 50_000, 300)

	require.Len(t, plan.Tasks, 3)
	assert.Equal(t, TaskRetrieval, plan.Tasks[0].Type)
	assert.Equal(t, TaskReasoning, plan.Tasks[1].Type)
	assert.Equal(t, TaskSynthesis, plan.Tasks[2].Type)
	assert.True(t, validation.Valid)
}

func TestValidateRejectsCycle(t *testing.T) {
	plan := WorkflowPlan{
		Tasks: []WorkflowTask{
			{ID: "t1", Dependencies: []string{"t2"}},
			{ID: "t2", Dependencies: []string{"t1"}},
		},
		Edges: []TaskEdge{{Src: "t1", Dst: "t2"}, {Src: "t2", Dst: "t1"}},
	}
	result := Validate(plan)
	require.False(t, result.Valid)
	found := false
	for _, e := range result.Errors {
		if containsAny(e, "cycle") {
			found = true
		}
	}
	assert.True(t, found, "expected a cycle error, got %v", result.Errors)
}

func TestValidateRejectsTooManyTasks(t *testing.T) {
	tasks := make([]WorkflowTask, MaxTasks+1)
	for i := range tasks {
		tasks[i] = WorkflowTask{ID: string(rune('a' + i))}
	}
	result := Validate(WorkflowPlan{Tasks: tasks})
	assert.False(t, result.Valid)
}

func TestValidateAcceptsExactlyMaxTasks(t *testing.T) {
	tasks := make([]WorkflowTask, MaxTasks)
	for i := range tasks {
		tasks[i] = WorkflowTask{ID: string(rune('a' + i))}
	}
	result := Validate(WorkflowPlan{Tasks: tasks})
	assert.True(t, result.Valid)
}

func TestValidateRejectsDanglingDependency(t *testing.T) {
	plan := WorkflowPlan{
		Tasks: []WorkflowTask{{ID: "t1", Dependencies: []string{"ghost"}}},
	}
	result := Validate(plan)
	assert.False(t, result.Valid)
}

func TestSanitizeDescriptionFiltersDangerousSubstrings(t *testing.T) {
	out := sanitizeDescription("please run rm -rf / && cat /etc/passwd")
	assert.NotContains(t, out, "rm -rf")
	assert.NotContains(t, out, "&&")
	assert.Contains(t, out, "[filtered]")
}

func TestClassifyTaskType(t *testing.T) {
	assert.Equal(t, TaskRetrieval, classifyTaskType("find the relevant rule"))
	assert.Equal(t, TaskComputation, classifyTaskType("calculate the DC bonus"))
	assert.Equal(t, TaskVerification, classifyTaskType("verify the character sheet"))
	assert.Equal(t, TaskReasoning, classifyTaskType("decide which spell to pick"))
	assert.Equal(t, TaskSynthesis, classifyTaskType("write a summary"))
}

func TestEstimateMarksHighApprovalAndCheckpoints(t *testing.T) {
	tasks := []WorkflowTask{
		{ID: "t1", Type: TaskReasoning, Description: "short"},
		{ID: "t2", Type: TaskSynthesis, Description: longWords(600)},
	}
	totalTokens, _, checkpoints := estimateAndCheckpoint(tasks, 1000, 300)
	assert.True(t, tasks[0].RequiresApproval, "reasoning tasks always require approval")
	assert.Greater(t, totalTokens, 0)
	assert.NotEmpty(t, checkpoints)
}

func TestEstimateAssignsExecutionTimeoutAboveEstimate(t *testing.T) {
	tasks := []WorkflowTask{{ID: "t1", Type: TaskReasoning, Description: "short"}}
	estimateAndCheckpoint(tasks, 1000, 300)
	assert.Greater(t, tasks[0].MaxExecutionTimeS, tasks[0].EstimatedTimeS)
}

func TestClampScalesDownOversizedPlan(t *testing.T) {
	tasks := []WorkflowTask{{ID: "t1", EstimatedTokens: 100_000, EstimatedTimeS: 1000}}
	clamp(tasks, 1000, 10)
	assert.Less(t, tasks[0].EstimatedTokens, 100_000)
	assert.Less(t, tasks[0].EstimatedTimeS, 1000.0)
}

func longWords(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += "word "
	}
	return out
}

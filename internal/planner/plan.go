package planner

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/workgraph/engine/internal/graphstore"
	"github.com/workgraph/engine/internal/idgen"
)

// Planner builds WorkflowPlans from goals by reading Procedure/Step nodes
// out of a GraphStore (§4.4).
type Planner struct {
	Store *graphstore.Store
}

// New builds a Planner over store.
func New(store *graphstore.Store) *Planner {
	return &Planner{Store: store}
}

// Plan runs the five-phase pipeline of §4.4: seed procedure, expand steps,
// materialize tasks, assign tools/models/prompts, estimate and checkpoint.
// maxTokens/maxTimeS are the caller's budget envelope values used for
// near-budget checkpoint marking and clamp scaling. Any panic during
// planning is converted into the single-task fallback plan so downstream
// API contracts stay uniform (§4.4 Fallback, §7 ValidationFailure: "the
// planner's fallback path is the only place an internal exception is
// converted silently into a degraded result").
func (p *Planner) Plan(goal string, maxTokens int, maxTimeS float64) (plan WorkflowPlan, result ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("goal", goal).
				Msg("planner: panic during planning, emitting fallback plan")
			plan = fallbackPlan(goal)
			result = Validate(plan)
		}
	}()

	plan = p.plan(goal, maxTokens, maxTimeS)
	result = Validate(plan)
	return plan, result
}

func (p *Planner) plan(goal string, maxTokens int, maxTimeS float64) WorkflowPlan {
	var tasks []WorkflowTask
	procedureID := ""

	if procedure, ok := seedProcedure(p.Store, goal); ok {
		steps := expandSteps(p.Store, procedure)
		if len(steps) > 0 {
			procedureID = procedure.ID
			tasks = materializeFromSteps(steps)
		}
	}
	if len(tasks) == 0 {
		tasks = materializeGenericChain(goal)
	}

	assignAttributes(tasks)
	totalTokens, totalTimeS, checkpoints := estimateAndCheckpoint(tasks, maxTokens, maxTimeS)

	return WorkflowPlan{
		ID:                   fmt.Sprintf("plan:%s", idgen.Prefix(fmt.Sprintf("%s:%d", goal, len(tasks)), 16)),
		Goal:                 goal,
		ProcedureID:          procedureID,
		Tasks:                tasks,
		Edges:                taskEdgesFromDependencies(tasks),
		TotalEstimatedTokens: totalTokens,
		TotalEstimatedTimeS:  totalTimeS,
		Checkpoints:          checkpoints,
		CreatedAt:            time.Now(),
	}
}

// fallbackPlan is the degraded single-task plan emitted when planning
// itself raises (§4.4 Fallback).
func fallbackPlan(goal string) WorkflowPlan {
	task := WorkflowTask{
		ID:              "task:fallback",
		Type:            TaskReasoning,
		Name:            "Fallback reasoning",
		Description:     "fallback plan for: " + sanitizeDescription(goal),
		Tool:            "llm",
		Model:           "claude-3-haiku",
		Prompt:          "[reasoning] fallback plan for: " + sanitizeDescription(goal),
		Parameters:      map[string]any{"task_type": string(TaskReasoning)},
		EstimatedTokens: 1000,
		EstimatedTimeS:  10,
	}
	return WorkflowPlan{
		ID:                   fmt.Sprintf("plan:fallback:%s", idgen.Prefix(goal, 12)),
		Goal:                 goal,
		Tasks:                []WorkflowTask{task},
		TotalEstimatedTokens: task.EstimatedTokens,
		TotalEstimatedTimeS:  task.EstimatedTimeS,
		CreatedAt:            time.Now(),
	}
}

// Command workgraph wires GraphStore, BudgetManager, Planner, Executor,
// WorkflowStateStore, and GraphGuidedReasoner into a single CLI, in the
// spirit of the teacher's examples/*/main.go demo programs: sequential
// setup, plain fmt.Println status lines, log.Fatalf on unrecoverable
// error.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/workgraph/engine/internal/budget"
	"github.com/workgraph/engine/internal/emit"
	"github.com/workgraph/engine/internal/executor"
	"github.com/workgraph/engine/internal/planner"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	a, err := newApp(loadConfig())
	if err != nil {
		log.Fatalf("workgraph: %v", err)
	}

	ctx := context.Background()
	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "plan":
		runPlan(a, args)
	case "run":
		runWorkflow(ctx, a, args)
	case "resume":
		runResume(ctx, a, args)
	case "workflows":
		runWorkflows(a, args)
	case "models":
		runModels(a)
	case "reason":
		runReason(ctx, a, args)
	case "invoke":
		runInvoke(ctx, a, args)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage: workgraph <plan|run|resume|workflows|models|reason|invoke> [args]")
	fmt.Println("  plan <role> <goal>            estimate and validate a plan without executing it")
	fmt.Println("  run <role> <goal>             plan, enforce budget, and execute a workflow")
	fmt.Println("  resume <workflow-id>          resume a previously persisted workflow")
	fmt.Println("  workflows [status]            list persisted workflows, optionally filtered")
	fmt.Println("  models                        list the model catalog")
	fmt.Println("  reason <goal> [max-hops]      run the graph-guided reasoner over a goal")
	fmt.Println("  invoke <prompt>               send a single prompt to the configured LLM provider")
}

func runPlan(a *app, args []string) {
	if len(args) < 2 {
		log.Fatalf("workgraph plan: usage: workgraph plan <role> <goal>")
	}
	role, goal := args[0], args[1]

	env := a.envelopes.Envelope(budget.Role(role))
	plan, validation := a.planner.Plan(goal, env.MaxTotalTokens, env.MaxTimeS)
	if !validation.Valid {
		fmt.Println("plan invalid:")
		for _, e := range validation.Errors {
			fmt.Println("  -", e)
		}
	}

	result := a.enforcer.Enforce(toPlanView(plan), env, dependentsCounter(plan))
	printEnforcement(plan, result)
}

func runWorkflow(ctx context.Context, a *app, args []string) {
	if len(args) < 2 {
		log.Fatalf("workgraph run: usage: workgraph run <role> <goal>")
	}
	role, goal := args[0], args[1]

	env := a.envelopes.Envelope(budget.Role(role))
	plan, validation := a.planner.Plan(goal, env.MaxTotalTokens, env.MaxTimeS)
	if !validation.Valid {
		log.Fatalf("workgraph run: invalid plan: %v", validation.Errors)
	}

	result := a.enforcer.Enforce(toPlanView(plan), env, dependentsCounter(plan))
	printEnforcement(plan, result)
	if result.ApprovalCheckpoint != nil {
		a.metrics.IncrementCheckpoints(plan.ID, result.ApprovalCheckpoint.Reason)
		fmt.Println("run aborted: plan requires approval before execution")
		return
	}

	workflowID := fmt.Sprintf("workflow:%s", plan.ID)
	a.emitter.Emit(emit.Event{WorkflowID: workflowID, Msg: "workflow started", Meta: map[string]any{"goal": goal, "task_count": len(plan.Tasks)}})
	fmt.Printf("executing %s (%d tasks)...\n", workflowID, len(plan.Tasks))

	state, err := a.executor.Run(ctx, workflowID, plan, a.states)
	if err != nil {
		a.emitter.Emit(emit.Event{WorkflowID: workflowID, Msg: "workflow run error", Meta: map[string]any{"error": err.Error()}})
		log.Fatalf("workgraph run: %v", err)
	}
	a.emitter.Emit(emit.Event{WorkflowID: workflowID, Msg: "workflow finished", Meta: map[string]any{"status": string(state.Status)}})
	recordTaskMetrics(a, workflowID, state)
	printWorkflowState(state)
}

// recordTaskMetrics feeds each task's terminal duration and retry count
// into Prometheus after a run completes.
func recordTaskMetrics(a *app, workflowID string, state executor.WorkflowState) {
	for taskID, ts := range state.Tasks {
		if ts.DurationS != nil {
			a.metrics.RecordTaskLatency(workflowID, taskID, secondsToDuration(*ts.DurationS), string(ts.Status))
		}
		for i := 0; i < ts.Retries; i++ {
			a.metrics.IncrementRetries(workflowID, taskID)
		}
		if ts.Status == executor.StatusBlocked {
			a.metrics.IncrementBlocked(workflowID, "dependency_failed")
		}
	}
}

func runResume(ctx context.Context, a *app, args []string) {
	if len(args) < 1 {
		log.Fatalf("workgraph resume: usage: workgraph resume <workflow-id>")
	}
	workflowID := args[0]

	previous, err := a.states.Get(workflowID)
	if err != nil {
		log.Fatalf("workgraph resume: %v", err)
	}

	env := a.envelopes.Envelope(budget.RolePlayer)
	plan, _ := a.planner.Plan(previous.Goal, env.MaxTotalTokens, env.MaxTimeS)

	state, err := a.executor.Resume(ctx, workflowID, plan, previous, a.states)
	if err != nil {
		log.Fatalf("workgraph resume: %v", err)
	}
	printWorkflowState(state)
}

func runWorkflows(a *app, args []string) {
	status := ""
	if len(args) > 0 {
		status = args[0]
	}
	summaries, err := a.states.List(status)
	if err != nil {
		log.Fatalf("workgraph workflows: %v", err)
	}
	for _, s := range summaries {
		fmt.Printf("%s  %-10s  %s\n", s.ID, s.Status, s.Goal)
	}
}

func runModels(a *app) {
	for _, m := range a.catalog.All() {
		fmt.Printf("%-20s %-10s $%.5f/1k  %dms  ctx=%d\n", m.Name, m.Provider, m.CostPer1kTokens, m.LatencyMS, m.ContextWindow)
	}
}

func runReason(ctx context.Context, a *app, args []string) {
	if len(args) < 1 {
		log.Fatalf("workgraph reason: usage: workgraph reason <goal> [max-hops]")
	}
	goal := args[0]
	maxHops := 5
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			maxHops = n
		}
	}

	trace := a.reasoner.Run(ctx, goal, maxHops)
	out, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		log.Fatalf("workgraph reason: %v", err)
	}
	fmt.Println(string(out))
}

func runInvoke(ctx context.Context, a *app, args []string) {
	if len(args) < 1 {
		log.Fatalf("workgraph invoke: usage: workgraph invoke <prompt>")
	}
	completion, err := a.model.Invoke(ctx, args[0])
	if err != nil {
		log.Fatalf("workgraph invoke: %v", err)
	}
	fmt.Printf("[%s] %s\n", completion.Model, completion.Text)
}

func printEnforcement(plan planner.WorkflowPlan, result budget.EnforcementResult) {
	fmt.Printf("plan %s: %d tasks, ~%d tokens, ~%.1fs, ~$%.4f\n",
		plan.ID, len(plan.Tasks), result.Estimate.TotalTokens, result.Estimate.TotalTimeS, result.Estimate.TotalCostUSD)

	if result.Compliant {
		fmt.Println("compliant with role envelope")
		return
	}
	if result.OptimizedPlan != nil && result.ApprovalCheckpoint == nil {
		fmt.Println("downgraded to a cheaper model mix to fit the role envelope")
		return
	}
	fmt.Println("exceeds role envelope:")
	for _, v := range result.Violations {
		fmt.Println("  -", v.String())
	}
	if result.ApprovalCheckpoint != nil {
		fmt.Printf("approval checkpoint minted: %s (%s)\n", result.ApprovalCheckpoint.CheckpointID, result.ApprovalCheckpoint.Reason)
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func printWorkflowState(state executor.WorkflowState) {
	fmt.Printf("workflow %s: %s\n", state.ID, state.Status)
	for id, ts := range state.Tasks {
		fmt.Printf("  %-20s %-10s retries=%d\n", id, ts.Status, ts.Retries)
	}
}

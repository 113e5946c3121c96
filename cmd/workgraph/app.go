package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/workgraph/engine/internal/budget"
	"github.com/workgraph/engine/internal/emit"
	"github.com/workgraph/engine/internal/executor"
	"github.com/workgraph/engine/internal/graphstore"
	"github.com/workgraph/engine/internal/llm"
	"github.com/workgraph/engine/internal/llm/anthropic"
	"github.com/workgraph/engine/internal/llm/google"
	"github.com/workgraph/engine/internal/llm/mock"
	"github.com/workgraph/engine/internal/llm/openai"
	"github.com/workgraph/engine/internal/metrics"
	"github.com/workgraph/engine/internal/planner"
	"github.com/workgraph/engine/internal/reasoner"
	"github.com/workgraph/engine/internal/statestore"
)

// app wires every core collaborator together, following the teacher's
// examples/*/main.go convention of a single place that constructs the
// concrete graph/store/model before handing it to the abstract surface
// (§9 Design Notes "Abstract collaborators": the core never imports a
// concrete LLM/Retriever, only cmd/ does).
type app struct {
	cfg config

	graph   *graphstore.Store
	states  statestore.Store
	catalog *budget.Catalog
	manager *budget.Manager
	selector *budget.Selector
	enforcer *budget.Enforcer
	envelopes budget.EnvelopeSource
	planner *planner.Planner
	executor *executor.Executor
	emitter emit.Emitter
	metrics *metrics.Metrics
	reasoner *reasoner.Reasoner
	model   llm.LLM
}

func newApp(cfg config) (*app, error) {
	graph, err := graphstore.New(graphstore.Options{SnapshotDir: cfg.GraphSnapshotDir})
	if err != nil {
		return nil, fmt.Errorf("workgraph: open graph store: %w", err)
	}

	states, err := newStateStore(cfg.StateStoreDSN)
	if err != nil {
		return nil, fmt.Errorf("workgraph: open state store: %w", err)
	}

	catalog := budget.NewDefaultCatalog()
	manager := budget.NewManager(catalog)
	selector := budget.NewSelector(catalog)
	enforcer := budget.NewEnforcer(manager, selector)

	envelopes, err := newEnvelopeSource(cfg.BudgetPolicyPath)
	if err != nil {
		return nil, fmt.Errorf("workgraph: load budget policy: %w", err)
	}

	plan := planner.New(graph)

	model := wireLLM(cfg)
	tools := defaultToolRegistry()
	exec := executor.New(executor.Options{
		MaxParallel: cfg.MaxParallel,
		TaskFunc:    newTaskFunc(tools, model),
	})

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	emitter := emit.NewLogEmitter(logger)

	reg := metrics.New(prometheus.DefaultRegisterer)

	retriever := &mock.Retriever{}
	reason := reasoner.New(graph, retriever)

	return &app{
		cfg: cfg, graph: graph, states: states,
		catalog: catalog, manager: manager, selector: selector, enforcer: enforcer,
		envelopes: envelopes, planner: plan, executor: exec, emitter: emitter,
		metrics: reg, reasoner: reason, model: model,
	}, nil
}

// wireLLM selects the concrete LLM adapter per cfg.LLMProvider, defaulting
// to the mock adapter when no provider/credentials are configured — the
// same fallback the teacher's quickstart examples use for a zero-setup
// demo run.
func wireLLM(cfg config) llm.LLM {
	switch cfg.LLMProvider {
	case "anthropic":
		return anthropic.New(cfg.LLMAPIKey, cfg.LLMModelName)
	case "openai":
		return openai.New(cfg.LLMAPIKey, cfg.LLMModelName)
	case "google":
		return google.New(cfg.LLMAPIKey, cfg.LLMModelName)
	default:
		return &mock.LLM{Responses: []llm.Completion{{Text: "(mock) no LLM provider configured", Model: "mock"}}}
	}
}

func newStateStore(dsn string) (statestore.Store, error) {
	switch {
	case dsn == "":
		return statestore.NewMemory(), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return statestore.NewSQLite(strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasPrefix(dsn, "mysql:"):
		return statestore.NewMySQL(strings.TrimPrefix(dsn, "mysql:"))
	default:
		return nil, fmt.Errorf("workgraph: unrecognized STATE_STORE_DSN scheme in %q", dsn)
	}
}

func newEnvelopeSource(path string) (budget.EnvelopeSource, error) {
	if path == "" {
		return budget.NewDefaultEnvelopes(), nil
	}
	return budget.LoadPolicyConfig(path)
}

// toPlanView projects a planner.WorkflowPlan into the budget package's
// narrow PlanView, the conversion the budget package deliberately leaves
// to its caller rather than importing planner (see DESIGN.md's
// internal/budget entry: avoiding a planner<->budget import cycle).
func toPlanView(plan planner.WorkflowPlan) budget.PlanView {
	tasks := make([]budget.TaskView, len(plan.Tasks))
	for i, t := range plan.Tasks {
		tasks[i] = budget.TaskView{
			ID:              t.ID,
			Type:            budget.Capability(t.Type),
			Model:           t.Model,
			EstimatedTokens: t.EstimatedTokens,
		}
	}
	return budget.PlanView{ID: plan.ID, Tasks: tasks}
}

// dependentsCounter builds a budget.DependentsCounter closure over plan's
// dependency edges.
func dependentsCounter(plan planner.WorkflowPlan) budget.DependentsCounter {
	counts := make(map[string]int, len(plan.Tasks))
	for _, t := range plan.Tasks {
		for _, dep := range t.Dependencies {
			counts[dep]++
		}
	}
	return func(taskID string) int { return counts[taskID] }
}

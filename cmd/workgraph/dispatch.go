package main

import (
	"context"
	"fmt"

	"github.com/workgraph/engine/internal/executor"
	"github.com/workgraph/engine/internal/llm"
	"github.com/workgraph/engine/internal/tool"
)

// newTaskFunc builds an executor.Options.TaskFunc that routes a task
// through a registered Tool when its Tool field names one, through model
// for the LLM-backed task types, and returns an error for any other
// task — the concrete half of §8's
// capability adapters, kept out of internal/executor per the "core never
// instantiates a concrete collaborator" rule (§9 Design Notes).
func newTaskFunc(reg *tool.Registry, model llm.LLM) func(executor.TaskRequest) (executor.TaskResult, error) {
	return func(req executor.TaskRequest) (executor.TaskResult, error) {
		if t, ok := reg.Lookup(req.Tool); ok {
			out, err := t.Call(context.Background(), req.Parameters)
			if err != nil {
				return executor.TaskResult{}, fmt.Errorf("dispatch: tool %q: %w", req.Tool, err)
			}
			return executor.TaskResult{Output: out}, nil
		}

		switch req.Type {
		case "reasoning", "synthesis", "retrieval", "verification":
			completion, err := model.Invoke(context.Background(), req.Prompt)
			if err != nil {
				return executor.TaskResult{}, fmt.Errorf("dispatch: model %s: %w", req.Model, err)
			}
			return executor.TaskResult{Output: completion.Text}, nil
		default:
			return executor.TaskResult{}, fmt.Errorf("dispatch: no tool or model route for task type %q", req.Type)
		}
	}
}

// defaultToolRegistry registers the tool capabilities available to every
// workflow run. Its names must agree with assignmentTable's Tool column
// (internal/planner/classify.go) for a task to actually reach one.
func defaultToolRegistry() *tool.Registry {
	return tool.NewRegistry(tool.CalculatorTool{})
}

package planner

import (
	"fmt"

	"github.com/workgraph/engine/internal/idgen"
)

// materializeFromSteps builds one task per seeded step (§4.4 phase 3),
// chained sequentially in step-number order — mirroring the prereq edges
// already present between the same steps in the graph (later depends on
// earlier).
func materializeFromSteps(steps []seededStep) []WorkflowTask {
	tasks := make([]WorkflowTask, 0, len(steps))
	var prevID string

	for _, s := range steps {
		name := propString(s.node.Properties, "name")
		description := propString(s.node.Properties, "description")
		if description == "" {
			description = name
		}

		taskID := fmt.Sprintf("task:%s", s.node.ID)
		var deps []string
		if prevID != "" {
			deps = []string{prevID}
		}

		tasks = append(tasks, WorkflowTask{
			ID:           taskID,
			Type:         classifyTaskType(description),
			Name:         name,
			Description:  description,
			Dependencies: deps,
		})
		prevID = taskID
	}

	return tasks
}

// materializeGenericChain synthesizes the fallback 3-task chain used when
// no procedure was seeded (§4.4 phase 3): retrieval -> reasoning ->
// synthesis.
func materializeGenericChain(goal string) []WorkflowTask {
	steps := []struct {
		typ         TaskType
		name        string
		description string
	}{
		{TaskRetrieval, "Gather information", "gather information relevant to: " + goal},
		{TaskReasoning, "Reason about goal", "decide how to address: " + goal},
		{TaskSynthesis, "Synthesize result", "synthesize a response for: " + goal},
	}

	tasks := make([]WorkflowTask, 0, len(steps))
	var prevID string
	for i, s := range steps {
		id := fmt.Sprintf("task:generic:%s", idgen.Prefix(fmt.Sprintf("%s:%d", goal, i), 12))
		var deps []string
		if prevID != "" {
			deps = []string{prevID}
		}
		tasks = append(tasks, WorkflowTask{
			ID: id, Type: s.typ, Name: s.name, Description: s.description, Dependencies: deps,
		})
		prevID = id
	}
	return tasks
}

// taskEdgesFromDependencies derives the Edges list from each task's
// Dependencies (§3: "edges is a subset of dependency relation on tasks").
func taskEdgesFromDependencies(tasks []WorkflowTask) []TaskEdge {
	var edges []TaskEdge
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			edges = append(edges, TaskEdge{Src: dep, Dst: t.ID})
		}
	}
	return edges
}

// assignAttributes fills tool/model/prompt/parameters from the fixed
// per-type mapping table, sanitizing the description first (§4.4 phase 4).
func assignAttributes(tasks []WorkflowTask) {
	for i := range tasks {
		t := &tasks[i]
		assignment := assignmentTable[t.Type]
		safeDescription := sanitizeDescription(t.Description)

		t.Tool = assignment.Tool
		t.Model = assignment.Model
		t.Prompt = fmt.Sprintf("[%s] %s", t.Type, safeDescription)
		t.Parameters = map[string]any{
			"task_type":   string(t.Type),
			"description": safeDescription,
		}
	}
}

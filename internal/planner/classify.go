package planner

import "strings"

// classifyTaskType applies the keyword heuristic of §4.4 phase 3: retrieval
// keywords first, then computation, then verification, then reasoning;
// anything else defaults to synthesis.
func classifyTaskType(description string) TaskType {
	text := strings.ToLower(description)

	switch {
	case containsAny(text, "gather", "collect", "find", "search", "look up"):
		return TaskRetrieval
	case containsAny(text, "calculate", "compute", "roll", "dc", "bonus"):
		return TaskComputation
	case containsAny(text, "check", "verify", "validate", "confirm"):
		return TaskVerification
	case containsAny(text, "decide", "choose", "select", "pick"):
		return TaskReasoning
	default:
		return TaskSynthesis
	}
}

func containsAny(text string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// typeAssignment is the fixed per-type tool/model/base-token mapping of
// §4.4 phase 4.
type typeAssignment struct {
	Tool      string
	Model     string
	BaseTokens int
}

var assignmentTable = map[TaskType]typeAssignment{
	TaskRetrieval:    {Tool: "retriever", Model: "claude-3-haiku", BaseTokens: 1000},
	TaskReasoning:    {Tool: "llm", Model: "claude-3-5-sonnet", BaseTokens: 2000},
	TaskComputation:  {Tool: "calculator", Model: "local-calculator", BaseTokens: 100},
	TaskVerification: {Tool: "rules_checker", Model: "claude-3-haiku", BaseTokens: 500},
	TaskSynthesis:    {Tool: "llm", Model: "claude-3-5-sonnet", BaseTokens: 3000},
}

package tool

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
)

// CalculatorTool evaluates an arithmetic/boolean expression, backing the
// "computation" task type's local-calculator model (§4.3's catalog names
// "local-calculator" as the zero-cost, 50 ms-latency model for
// CapComputation tasks; this tool is what a WorkflowTask naming that
// model actually dispatches to). Grounded on internal/graphstore's
// expr-lang/expr usage for its own pattern-matching queries — the same
// expression evaluator, here driving a Tool instead of a graph query.
type CalculatorTool struct{}

// Name implements Tool. It must agree with assignmentTable's TaskComputation
// entry (internal/planner/classify.go) so a computation task's Tool field
// actually resolves through the registry.
func (CalculatorTool) Name() string { return "calculator" }

// Call evaluates input["expression"] with no variable environment and
// returns the result under "result".
func (CalculatorTool) Call(ctx context.Context, input map[string]any) (map[string]any, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	exprStr, ok := input["expression"].(string)
	if !ok || exprStr == "" {
		return nil, fmt.Errorf("tool: calculator: expression parameter required (string)")
	}

	program, err := expr.Compile(exprStr)
	if err != nil {
		return nil, fmt.Errorf("tool: calculator: compile %q: %w", exprStr, err)
	}
	result, err := expr.Run(program, nil)
	if err != nil {
		return nil, fmt.Errorf("tool: calculator: evaluate %q: %w", exprStr, err)
	}

	return map[string]any{"result": result}, nil
}

var _ Tool = (CalculatorTool{})

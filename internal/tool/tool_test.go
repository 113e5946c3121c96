package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	calc := CalculatorTool{}
	reg := NewRegistry(calc)

	found, ok := reg.Lookup("calculator")
	require.True(t, ok)
	assert.Equal(t, "calculator", found.Name())

	_, ok = reg.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestCalculatorToolEvaluatesExpression(t *testing.T) {
	calc := CalculatorTool{}
	out, err := calc.Call(context.Background(), map[string]any{"expression": "2 + 3 * 4"})
	require.NoError(t, err)
	assert.Equal(t, 14, out["result"])
}

func TestCalculatorToolRequiresExpression(t *testing.T) {
	calc := CalculatorTool{}
	_, err := calc.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
}

func TestMockToolCyclesResponsesAndRecordsCalls(t *testing.T) {
	m := &MockTool{ToolName: "search", Responses: []map[string]any{{"n": 1}, {"n": 2}}}

	out1, err := m.Call(context.Background(), map[string]any{"q": "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, out1["n"])

	out2, err := m.Call(context.Background(), map[string]any{"q": "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, out2["n"])

	out3, err := m.Call(context.Background(), map[string]any{"q": "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, out3["n"])

	assert.Len(t, m.Calls(), 3)
}

func TestMockToolReturnsConfiguredError(t *testing.T) {
	m := &MockTool{ToolName: "broken", Err: assert.AnError}
	_, err := m.Call(context.Background(), nil)
	assert.ErrorIs(t, err, assert.AnError)
}

package tool

import (
	"context"
	"sync"
)

// MockTool is a configurable test double for Tool, grounded on the
// teacher's graph/tool/mock.go MockTool unchanged beyond its package
// path.
type MockTool struct {
	ToolName  string
	Responses []map[string]any
	Err       error

	mu        sync.Mutex
	calls     []map[string]any
	callIndex int
}

// Name implements Tool.
func (m *MockTool) Name() string { return m.ToolName }

// Call implements Tool.
func (m *MockTool) Call(ctx context.Context, input map[string]any) (map[string]any, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, input)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return map[string]any{}, nil
	}

	idx := m.callIndex
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.callIndex++
	}
	return m.Responses[idx], nil
}

// Calls returns every input passed to Call, in order.
func (m *MockTool) Calls() []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]any(nil), m.calls...)
}

var _ Tool = (*MockTool)(nil)

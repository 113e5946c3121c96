// Package mock provides test doubles for internal/llm's LLM and Retriever
// interfaces, grounded on the teacher's MockChatModel (graph/model/mock.go):
// configurable canned responses, call-history tracking, and error injection,
// all safe for concurrent use.
package mock

import (
	"context"
	"sync"

	"github.com/workgraph/engine/internal/llm"
)

// LLM is a configurable test double for llm.LLM.
type LLM struct {
	// Responses is the sequence of completions returned in order. Once
	// exhausted, the last response repeats.
	Responses []llm.Completion
	// Err, if set, is returned instead of a response.
	Err error

	mu    sync.Mutex
	calls []string
	next  int
}

// Invoke implements llm.LLM.
func (m *LLM) Invoke(ctx context.Context, prompt string) (llm.Completion, error) {
	if ctx.Err() != nil {
		return llm.Completion{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, prompt)
	if m.Err != nil {
		return llm.Completion{}, m.Err
	}
	if len(m.Responses) == 0 {
		return llm.Completion{Model: "mock"}, nil
	}

	idx := m.next
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.next++
	}
	return m.Responses[idx], nil
}

// Calls returns every prompt passed to Invoke, in order.
func (m *LLM) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Retriever is a configurable test double for llm.Retriever.
type Retriever struct {
	Chunks []llm.Chunk
	Err    error

	mu      sync.Mutex
	queries []string
}

// Retrieve implements llm.Retriever.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]llm.Chunk, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.mu.Lock()
	r.queries = append(r.queries, query)
	r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	return r.Chunks, nil
}

// Queries returns every query passed to Retrieve, in order.
func (r *Retriever) Queries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

var (
	_ llm.LLM       = (*LLM)(nil)
	_ llm.Retriever = (*Retriever)(nil)
)

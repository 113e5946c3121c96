// Package llm defines the narrow abstract-collaborator interfaces the
// core consumes for language generation and retrieval (§9 Design Notes:
// "Retriever, LLM, and tool executors are capabilities consumed by the
// Reasoner and Executor... accepted as constructor parameters; the core
// never instantiates a concrete one"). Concrete adapters live in
// internal/llm/{mock,anthropic,openai,google}; internal/reasoner imports
// only this package, and internal/executor imports none of them.
package llm

import (
	"context"

	"github.com/workgraph/engine/internal/graphbuilder"
)

// LLM is the narrow text-generation capability (§9: "invoke(task) →
// Result"). Prompt is a single fully-formed string — system-prompt
// construction and role framing are the adapter's concern, not the
// caller's, keeping this interface provider-agnostic.
type LLM interface {
	Invoke(ctx context.Context, prompt string) (Completion, error)
}

// Completion is the normalized result of one LLM.Invoke call.
type Completion struct {
	Text string
	// Model is the concrete model name that produced Text, useful for
	// attaching provenance to an executed task's output.
	Model string
}

// Chunk is the unit a Retriever returns — the same shape GraphBuilder
// ingests, so retrieval output can be fed straight back into ingestion
// without a conversion layer.
type Chunk = graphbuilder.Chunk

// Retriever is the narrow retrieval capability (§9: "retrieve(query) →
// [Chunk]").
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Chunk, error)
}

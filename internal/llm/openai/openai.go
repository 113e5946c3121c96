// Package openai adapts OpenAI's Chat Completions API to the narrow
// internal/llm LLM interface, grounded on the teacher's
// graph/model/openai ChatModel adapter — same SDK and client
// construction, collapsed to a single-prompt user message.
package openai

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/workgraph/engine/internal/llm"
)

const defaultModel = "gpt-4o"

// LLM implements llm.LLM over OpenAI's Chat Completions API.
type LLM struct {
	apiKey    string
	modelName string
}

// New builds an OpenAI-backed LLM. An empty modelName falls back to
// defaultModel.
func New(apiKey, modelName string) *LLM {
	if modelName == "" {
		modelName = defaultModel
	}
	return &LLM{apiKey: apiKey, modelName: modelName}
}

// Invoke implements llm.LLM.
func (l *LLM) Invoke(ctx context.Context, prompt string) (llm.Completion, error) {
	if ctx.Err() != nil {
		return llm.Completion{}, ctx.Err()
	}
	if l.apiKey == "" {
		return llm.Completion{}, fmt.Errorf("openai: API key is required")
	}

	client := openaisdk.NewClient(option.WithAPIKey(l.apiKey))
	resp, err := client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(l.modelName),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{openaisdk.UserMessage(prompt)},
	})
	if err != nil {
		return llm.Completion{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llm.Completion{Model: l.modelName}, nil
	}

	return llm.Completion{Text: resp.Choices[0].Message.Content, Model: l.modelName}, nil
}

var _ llm.LLM = (*LLM)(nil)

// Package anthropic adapts Anthropic's Claude API to the narrow internal/llm
// LLM interface, grounded on the teacher's graph/model/anthropic ChatModel
// adapter — same SDK, collapsed to a single user-message call since
// llm.LLM has no multi-turn or tool-calling surface.
package anthropic

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/workgraph/engine/internal/llm"
)

const defaultModel = "claude-3-5-sonnet-20241022"
const defaultMaxTokens = 4096

// LLM implements llm.LLM over the Anthropic Messages API.
type LLM struct {
	apiKey    string
	modelName string
}

// New builds an Anthropic-backed LLM. An empty modelName falls back to
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
		return llm.Completion{}, fmt.Errorf("anthropic: API key is required")
	}

	client := anthropicsdk.NewClient(option.WithAPIKey(l.apiKey))
	resp, err := client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(l.modelName),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return llm.Completion{}, fmt.Errorf("anthropic: %w", err)
	}

	return llm.Completion{Text: extractText(resp), Model: l.modelName}, nil
}

func extractText(resp *anthropicsdk.Message) string {
	var text string
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropicsdk.TextBlock); ok {
			text += tb.Text
		}
	}
	return text
}

var _ llm.LLM = (*LLM)(nil)

// Package google adapts Google's Gemini API to the narrow internal/llm LLM
// interface, grounded on the teacher's graph/model/google ChatModel adapter
// — same SDK (google/generative-ai-go), collapsed from a multi-turn,
// tool-calling Chat call to a single-prompt Invoke since llm.LLM has no
// multi-turn or tool-calling surface.
package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/workgraph/engine/internal/llm"
)

const defaultModel = "gemini-2.5-flash"

// LLM implements llm.LLM over the Gemini API.
type LLM struct {
	apiKey    string
	modelName string
}

// New builds a Gemini-backed LLM. An empty modelName falls back to defaultModel.
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
		return llm.Completion{}, errors.New("google: API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(l.apiKey))
	if err != nil {
		return llm.Completion{}, fmt.Errorf("google: create client: %w", err)
	}
	defer func() { _ = client.Close() }()

	genModel := client.GenerativeModel(l.modelName)
	resp, err := genModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return llm.Completion{}, fmt.Errorf("google: %w", err)
	}

	return llm.Completion{Text: extractText(resp), Model: l.modelName}, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			if text != "" {
				text += "\n"
			}
			text += string(t)
		}
	}
	return text
}

var _ llm.LLM = (*LLM)(nil)

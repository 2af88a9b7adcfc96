package generation

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// LangChain generates replies through any langchaingo model; it serves the
// OpenAI and GitHub Models providers.
type LangChain struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

// NewLangChain wraps a langchaingo model.
func NewLangChain(model llms.Model, temperature float64, maxTokens int) *LangChain {
	return &LangChain{model: model, temperature: temperature, maxTokens: maxTokens}
}

func (g *LangChain) Generate(ctx context.Context, situation string) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(g.temperature)}
	if g.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(g.maxTokens))
	}

	response, err := g.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, SystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, situation),
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}
	if response == nil || len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	reply := StripContext(response.Choices[0].Content, situation)
	if reply == "" {
		return "", ErrEmptyResponse
	}
	return reply, nil
}

// Package generation turns short situational summaries into friendly replies
// using a chat model.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms/openai"

	"cantina/internal/config"
)

// SystemPrompt frames every generation request.
const SystemPrompt = "You are a chatbot for a restaurant. Your job is to assist customers in answering " +
	"questions about the menu and placing their orders. Only respond to questions or commands " +
	"related to ordering food. Do not generate any other kind of response."

// githubModelsURL is the OpenAI-compatible GitHub Models endpoint
const githubModelsURL = "https://models.inference.ai.azure.com"

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("empty response from model")

// Generator turns a situational summary into a customer-facing reply.
// Callers treat it as a blocking call without retries.
type Generator interface {
	Generate(ctx context.Context, situation string) (string, error)
}

// New builds the generator selected by cfg.Provider.
func New(cfg config.LLMConfig) (Generator, error) {
	var gen Generator
	switch cfg.Provider {
	case "", "none":
		return Echo{}, nil
	case "openai", "github":
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
		}
		baseURL := cfg.BaseURL
		if baseURL == "" && cfg.Provider == "github" {
			baseURL = githubModelsURL
		}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		client, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
		}
		gen = NewLangChain(client, cfg.Temperature, cfg.MaxTokens)
	case "azure":
		az, err := NewAzure(cfg.Endpoint, cfg.APIKey, cfg.Deployment, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		gen = az
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}

	if cfg.Timeout > 0 {
		gen = WithTimeout(gen, cfg.Timeout)
	}
	return gen, nil
}

// Echo returns the situation unchanged. It is used when no model is configured.
type Echo struct{}

func (Echo) Generate(_ context.Context, situation string) (string, error) {
	return situation, nil
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

// WithTimeout bounds every Generate call of next by d.
func WithTimeout(next Generator, d time.Duration) Generator {
	return &timeoutGenerator{next: next, timeout: d}
}

func (g *timeoutGenerator) Generate(ctx context.Context, situation string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.next.Generate(ctx, situation)
}

// StripContext removes an echoed prompt from a model reply: anything up to
// and including the system prompt or the situation text, and surrounding
// quotes and whitespace.
func StripContext(reply, situation string) string {
	out := strings.TrimSpace(reply)
	for _, echoed := range []string{SystemPrompt, strings.TrimSpace(situation)} {
		if echoed == "" {
			continue
		}
		if i := strings.Index(out, echoed); i >= 0 {
			out = strings.TrimSpace(out[i+len(echoed):])
		}
	}
	return strings.Trim(out, "\"' \n\t")
}

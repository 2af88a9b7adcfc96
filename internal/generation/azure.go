package generation

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
)

// Azure generates replies with an Azure OpenAI deployment.
type Azure struct {
	client         *azopenai.Client
	deploymentName string
	temperature    float32
	maxTokens      int32
}

// NewAzure creates an Azure OpenAI generator authenticated with an API key.
func NewAzure(endpoint, apiKey, deployment string, temperature float64, maxTokens int) (*Azure, error) {
	if endpoint == "" || apiKey == "" || deployment == "" {
		return nil, fmt.Errorf("azure openai requires an endpoint, api key and deployment")
	}

	client, err := azopenai.NewClientWithKeyCredential(endpoint, azcore.NewKeyCredential(apiKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}

	return &Azure{
		client:         client,
		deploymentName: deployment,
		temperature:    float32(temperature),
		maxTokens:      int32(maxTokens),
	}, nil
}

func (g *Azure) Generate(ctx context.Context, situation string) (string, error) {
	prompt := SystemPrompt + "\n\n" + situation

	opts := azopenai.ChatCompletionsOptions{
		Messages: []azopenai.ChatRequestMessageClassification{
			&azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(prompt),
			},
		},
		Temperature:    to.Ptr(g.temperature),
		DeploymentName: to.Ptr(g.deploymentName),
	}
	if g.maxTokens > 0 {
		opts.MaxTokens = to.Ptr(g.maxTokens)
	}

	resp, err := g.client.GetChatCompletions(ctx, opts, nil)
	if err != nil {
		return "", fmt.Errorf("Azure OpenAI completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return "", ErrEmptyResponse
	}

	reply := StripContext(*resp.Choices[0].Message.Content, prompt)
	if reply == "" {
		return "", ErrEmptyResponse
	}
	return reply, nil
}

package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sirpickle/index-server/internal/apperr"
)

// OpenRouter generates text through OpenRouter's OpenAI-compatible
// chat-completions API.
type OpenRouter struct {
	client *openai.Client
	model  string
}

// NewOpenRouter builds the OpenRouter backend. A missing key does not fail
// construction; Generate reports the provider as unavailable.
func NewOpenRouter(apiKey, baseURL, model string) *OpenRouter {
	var client *openai.Client
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		client = openai.NewClientWithConfig(cfg)
	}
	return &OpenRouter{client: client, model: model}
}

func (o *OpenRouter) Name() string { return "openrouter" }

func (o *OpenRouter) Generate(ctx context.Context, prompt string) (string, error) {
	if o.client == nil {
		return "", apperr.New(apperr.KindUnavailable, "openrouter provider not configured")
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   2048,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "openrouter call failed", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperr.New(apperr.KindBadUpstream, "openrouter returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}

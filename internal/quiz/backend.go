package quiz

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Backend is the generative text-completion service. It receives a prompt
// and returns the model's raw text output, which the generator validates.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const systemPrompt = "You are a quiz generator. You create questions strictly grounded " +
	"in the provided document excerpts and answer only with JSON."

// OpenAIBackend implements Backend over an OpenAI-compatible chat
// completions endpoint.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// OpenAIBackendConfig configures the chat completions client.
type OpenAIBackendConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAIBackend creates a chat-completion backend.
func NewOpenAIBackend(cfg OpenAIBackendConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("quiz backend: missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Complete sends the prompt and returns the first choice's content.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("quiz backend: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

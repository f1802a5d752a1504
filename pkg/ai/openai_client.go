package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient calls the OpenAI chat completions API (or any compatible
// endpoint when a base URL is configured).
type OpenAIClient struct {
	client  *openai.Client
	timeout time.Duration
}

// NewOpenAIClient builds a client. baseURL may be empty for the hosted API.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), timeout: timeout}
}

// GenerateText implements TextGenerator.
func (c *OpenAIClient) GenerateText(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &ProviderError{
				Provider: ProviderOpenAI,
				Kind:     classifyStatus(apiErr.HTTPStatusCode),
				Status:   apiErr.HTTPStatusCode,
				Message:  apiErr.Message,
			}
		}
		return "", wrapTransportError(ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

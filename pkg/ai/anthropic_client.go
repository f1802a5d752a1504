package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 4096
)

// AnthropicClient calls the Anthropic messages API.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewAnthropicClient builds a client. baseURL may be empty for the hosted API.
func NewAnthropicClient(apiKey, baseURL string, timeout time.Duration) *AnthropicClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnthropicClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GenerateText implements TextGenerator.
func (c *AnthropicClient) GenerateText(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqBody := anthropicRequest{
		Model:     model,
		MaxTokens: anthropicMaxTokens,
		System:    systemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: userPrompt}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", wrapTransportError(ProviderAnthropic, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp anthropicErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return "", &ProviderError{
			Provider: ProviderAnthropic,
			Kind:     classifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Message:  msg,
		}
	}

	var msgResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", wrapTransportError(ProviderAnthropic, err)
	}
	var sb strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

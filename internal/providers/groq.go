package providers

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"resync/internal/models"
)

// GroqProvider talks to Groq's OpenAI-compatible chat completions API.
type GroqProvider struct {
	client  *openai.Client
	params  CompletionParams
	timeout time.Duration
	hasKey  bool
}

func NewGroqProvider(apiKey, baseURL string, params CompletionParams, timeout time.Duration) *GroqProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if params.Model == "" {
		params.Model = "deepseek-r1-distill-llama-70b"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GroqProvider{
		client:  openai.NewClientWithConfig(cfg),
		params:  params,
		timeout: timeout,
		hasKey:  apiKey != "",
	}
}

func (g *GroqProvider) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	if !g.hasKey {
		return "", fmt.Errorf("groq api key missing")
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       g.params.Model,
		Messages:    toOpenAIMessages(messages),
		Temperature: g.params.Temperature,
		MaxTokens:   g.params.MaxTokens,
		TopP:        g.params.TopP,
	}
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("groq chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq returned empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}

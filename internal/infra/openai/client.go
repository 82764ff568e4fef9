package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel = "gpt-4o-mini"

	temperature = 0.9
	maxTokens   = 120
)

// Client is a chat-completion client for any OpenAI-compatible endpoint
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new client. An empty baseURL uses the OpenAI endpoint.
func NewClient(apiKey, baseURL, model string) *Client {
	if model == "" {
		model = defaultModel
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Complete sends a single user prompt and returns the first choice
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}

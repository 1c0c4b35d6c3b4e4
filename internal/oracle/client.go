// Package oracle is the client for tenant-configured chat-completion
// endpoints. Every tenant may point at its own OpenAI-compatible base URL
// with its own key; tenants without one use the process defaults.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/config"
)

var ErrEmptyCompletion = errors.New("oracle returned no choices")

// Credentials selects the endpoint for one request. Empty fields fall back
// to the configured defaults.
type Credentials struct {
	BaseURL string
	APIKey  string
}

// Message is one turn of the conversation as presented to the model.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

type Client struct {
	defaultBaseURL string
	defaultKey     string
	model          string
	timeout        time.Duration
}

func New(cfg config.OracleConfig) *Client {
	return &Client{
		defaultBaseURL: cfg.GetOracleBaseURL(),
		defaultKey:     cfg.GetOracleAPIKey(),
		model:          cfg.GetOracleModel(),
		timeout:        cfg.GetOracleTimeout(),
	}
}

// Complete sends the system prompt plus conversation history and returns the
// model's reply. The call is bounded by the configured timeout regardless of
// the caller's context.
func (c *Client) Complete(ctx context.Context, creds Credentials, system string, history []Message) (string, error) {
	key := creds.APIKey
	if key == "" {
		key = c.defaultKey
	}
	clientCfg := openai.DefaultConfig(key)
	if creds.BaseURL != "" {
		clientCfg.BaseURL = creds.BaseURL
	} else if c.defaultBaseURL != "" {
		clientCfg.BaseURL = c.defaultBaseURL
	}
	client := openai.NewClientWithConfig(clientCfg)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" || m.Role == "bot" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	timeout := c.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyCompletion
	}
	return reply, nil
}

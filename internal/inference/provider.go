// Package inference performs the opaque text-in/text-out model call. The
// caller supplies provider credentials per call; nothing here persists them.
package inference

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var ErrProviderConfig = errors.New("inference: provider config requires baseURL, apiKey and model")

const (
	systemPrompt = "You are a helpful AI assistant. Be concise and helpful."
	maxTokens    = 2048
	noResponse   = "No response generated."
)

// ProviderConfig selects the model endpoint for one call. Most providers
// speak the OpenAI chat-completions protocol; Anthropic endpoints are
// detected by host and use the native Messages API.
type ProviderConfig struct {
	BaseURL string `json:"baseURL"`
	APIKey  string `json:"apiKey"`
	Model   string `json:"model"`
}

func (c ProviderConfig) validate() error {
	if c.BaseURL == "" || c.APIKey == "" || c.Model == "" {
		return ErrProviderConfig
	}
	return nil
}

// ChatMessage is one turn of prior conversation context.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat sends message with history as context and returns the model's reply.
func Chat(ctx context.Context, cfg ProviderConfig, message string, history []ChatMessage) (string, error) {
	if err := cfg.validate(); err != nil {
		return "", err
	}
	if isAnthropicEndpoint(cfg.BaseURL) {
		return chatAnthropic(ctx, cfg, message, history)
	}
	return chatOpenAI(ctx, cfg, message, history)
}

func isAnthropicEndpoint(baseURL string) bool {
	return strings.Contains(baseURL, "anthropic.com")
}

func chatOpenAI(ctx context.Context, cfg ProviderConfig, message string, history []ChatMessage) (string, error) {
	conf := openai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = cfg.BaseURL
	client := openai.NewClientWithConfig(conf)

	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     cfg.Model,
		Messages:  msgs,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return noResponse, nil
	}
	return resp.Choices[0].Message.Content, nil
}

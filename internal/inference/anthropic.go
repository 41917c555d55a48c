package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const anthropicAPIVersion = "2023-06-01"

var anthropicHTTPClient = &http.Client{Timeout: 120 * time.Second}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []ChatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// chatAnthropic calls the native Messages API, which nests content blocks
// instead of choices and authenticates with x-api-key.
func chatAnthropic(ctx context.Context, cfg ProviderConfig, message string, history []ChatMessage) (string, error) {
	msgs := make([]ChatMessage, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, ChatMessage{Role: "user", Content: message})

	body, err := json.Marshal(anthropicRequest{
		Model:     cfg.Model,
		MaxTokens: maxTokens,
		Messages:  msgs,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := anthropicHTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("inference: anthropic api error %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	var out anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Content) == 0 || out.Content[0].Text == "" {
		return noResponse, nil
	}
	return out.Content[0].Text, nil
}

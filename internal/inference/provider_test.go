package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatRejectsIncompleteConfig(t *testing.T) {
	for _, cfg := range []ProviderConfig{
		{},
		{BaseURL: "http://x"},
		{BaseURL: "http://x", APIKey: "k"},
		{APIKey: "k", Model: "m"},
	} {
		if _, err := Chat(context.Background(), cfg, "hi", nil); !errors.Is(err, ErrProviderConfig) {
			t.Fatalf("cfg %+v: got %v, want ErrProviderConfig", cfg, err)
		}
	}
}

func TestChatOpenAICompatible(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"pong"}}]}`))
	}))
	defer srv.Close()

	cfg := ProviderConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"}
	out, err := Chat(context.Background(), cfg, "ping", []ChatMessage{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if out != "pong" {
		t.Fatalf("got %q", out)
	}
	if gotReq.Model != "test-model" {
		t.Fatalf("model = %q", gotReq.Model)
	}
	// system + 2 history + current message
	if len(gotReq.Messages) != 4 {
		t.Fatalf("got %d messages", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[3].Content != "ping" {
		t.Fatalf("unexpected messages %+v", gotReq.Messages)
	}
}

func TestChatAnthropic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("missing anthropic-version header")
		}
		_, _ = w.Write([]byte(`{"content":[{"text":"claude reply"}]}`))
	}))
	defer srv.Close()

	cfg := ProviderConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"}
	out, err := chatAnthropic(context.Background(), cfg, "hi", nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if out != "claude reply" {
		t.Fatalf("got %q", out)
	}
}

func TestChatAnthropicErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "over quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := ProviderConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"}
	if _, err := chatAnthropic(context.Background(), cfg, "hi", nil); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestAnthropicDetection(t *testing.T) {
	if !isAnthropicEndpoint("https://api.anthropic.com/v1") {
		t.Fatal("anthropic endpoint not detected")
	}
	if isAnthropicEndpoint("https://api.openai.com/v1") {
		t.Fatal("openai endpoint misdetected")
	}
}

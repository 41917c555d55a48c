package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Azurboy/MindVault-VibeSui/internal/inference"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.chat = func(_ context.Context, cfg inference.ProviderConfig, message string, history []inference.ChatMessage) (string, error) {
		return "echo: " + message, nil
	}
	return s
}

func chatBody() string {
	return `{
		"message": "hello",
		"provider": {"baseURL": "http://model", "apiKey": "k", "model": "m"},
		"history": [{"role": "user", "content": "before"}]
	}`
}

func postChat(s *Server, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:55555"
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{})
	for _, path := range []string{"/health", "/api/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
	}
}

func TestChatRelay(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := postChat(s, chatBody(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var out chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Response != "echo: hello" {
		t.Fatalf("got %q", out.Response)
	}
}

func TestChatValidation(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := postChat(s, `{"provider": {"baseURL": "http://x", "apiKey": "k", "model": "m"}}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing message: status %d", rec.Code)
	}

	rec = postChat(s, `{"message": "hi"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing provider: status %d", rec.Code)
	}

	rec = postChat(s, `{broken`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	out := httptest.NewRecorder()
	s.ServeHTTP(out, req)
	if out.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET: status %d", out.Code)
	}
}

func TestChatRateLimit(t *testing.T) {
	s := newTestServer(t, Config{ChatPerMinute: 2})

	for i := 0; i < 2; i++ {
		if rec := postChat(s, chatBody(), ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}
	rec := postChat(s, chatBody(), "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestChatAuthRequired(t *testing.T) {
	s := newTestServer(t, Config{AuthRequired: true})

	rec := postChat(s, chatBody(), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", rec.Code)
	}

	rec = postChat(s, chatBody(), "not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d", rec.Code)
	}

	token, _, err := s.signer.issueToken("test")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec = postChat(s, chatBody(), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status %d: %s", rec.Code, rec.Body)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

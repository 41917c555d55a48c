package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Azurboy/MindVault-VibeSui/internal/inference"
)

type chatFunc func(ctx context.Context, cfg inference.ProviderConfig, message string, history []inference.ChatMessage) (string, error)

func defaultChat(ctx context.Context, cfg inference.ProviderConfig, message string, history []inference.ChatMessage) (string, error) {
	return inference.Chat(ctx, cfg, message, history)
}

type chatRequest struct {
	Message  string                   `json:"message"`
	Provider inference.ProviderConfig `json:"provider"`
	History  []inference.ChatMessage  `json:"history"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONStatus(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	if !s.rlChat.allow(getClientIP(r)) {
		tooMany(w, 60)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorResponse{Error: "bad json"})
		return
	}
	if req.Message == "" {
		writeJSONStatus(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}
	if req.Provider.BaseURL == "" || req.Provider.APIKey == "" || req.Provider.Model == "" {
		writeJSONStatus(w, http.StatusBadRequest,
			errorResponse{Error: "provider configuration is required (baseURL, apiKey, model)"})
		return
	}

	reply, err := s.chat(r.Context(), req.Provider, req.Message, req.History)
	if err != nil {
		s.logger.Printf("chat relay error: %v", err)
		writeJSONStatus(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, chatResponse{Response: reply})
}

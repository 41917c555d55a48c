// Package server is the stateless chat relay: it forwards one decrypted
// message (with its provider credentials) to the model endpoint and returns
// the reply. Nothing is persisted; when the request ends, the plaintext,
// history and API key are gone.
package server

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type Server struct {
	cfg    Config
	mux    *http.ServeMux
	logger *log.Logger
	signer *tokenSigner
	rlChat *multiLimiter

	// chat is swappable for tests; defaults to inference.Chat.
	chat chatFunc
}

func New(cfg Config) (*Server, error) {
	cfg.setDefaults()

	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		logger: log.New(os.Stdout, "[relay] ", log.LstdFlags|log.Lshortfile),
		chat:   defaultChat,
	}

	perWindow := func(n int, window time.Duration) rate.Limit {
		return rate.Limit(float64(n) / window.Seconds())
	}
	s.rlChat = newMultiLimiter(perWindow(cfg.ChatPerMinute, time.Minute), cfg.ChatPerMinute, time.Hour)

	if cfg.AuthRequired {
		signer, err := newTokenSigner(cfg.JWTIssuer, cfg.TokenTTL)
		if err != nil {
			return nil, err
		}
		s.signer = signer
		token, exp, err := signer.issueToken("relay-client")
		if err != nil {
			return nil, err
		}
		s.logger.Printf("auth enabled; bearer token (valid until %s): %s", exp.Format(time.RFC3339), token)
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/chat", s.requireAuth(s.handleChat))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Printf("panic: %v", rec)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}()

	s.addDefaultHeaders(w, r)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler { return s }

func (s *Server) addDefaultHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

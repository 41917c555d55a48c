package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Azurboy/MindVault-VibeSui/internal/server"
)

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	cfg := server.Config{
		Addr:          envOr("RELAY_ADDR", ":8080"),
		AuthRequired:  envBool("RELAY_AUTH_REQUIRED"),
		JWTIssuer:     os.Getenv("RELAY_JWT_ISSUER"),
		TokenTTL:      envDuration("RELAY_TOKEN_TTL"),
		ChatPerMinute: envInt("RELAY_CHAT_PER_MINUTE"),
	}

	s, err := server.New(cfg)
	if err != nil {
		log.Fatalf("relay: %v", err)
	}

	log.Printf("relay listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, s.Handler()))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func envInt(key string) int {
	v, _ := strconv.Atoi(os.Getenv(key))
	return v
}

func envDuration(key string) time.Duration {
	v, _ := time.ParseDuration(os.Getenv(key))
	return v
}

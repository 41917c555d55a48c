package server

import "time"

type Config struct {
	Addr string

	// AuthRequired gates /api/chat behind a bearer token minted at
	// startup. Off by default: the relay holds no user data, so an open
	// local deployment is acceptable.
	AuthRequired bool
	JWTIssuer    string
	TokenTTL     time.Duration

	// ChatPerMinute bounds requests per client IP.
	ChatPerMinute int
	MaxBodyBytes  int64
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.JWTIssuer == "" {
		c.JWTIssuer = "mindvault-relay"
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 12 * time.Hour
	}
	if c.ChatPerMinute <= 0 {
		c.ChatPerMinute = 20
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
}

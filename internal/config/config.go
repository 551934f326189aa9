// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the Budgetly server.
type Config struct {
	Port   int
	DBPath string

	// External collaborators.
	AssistantURL string // text-completion endpoint
	ReceiptURL   string // receipt-extraction endpoint
	SubmitURL    string // split-submission endpoint ("" = persist locally)

	// Auth.
	JWTSecret     string
	TokenDuration time.Duration

	// Chat behavior.
	StreamInterval time.Duration // character reveal tick
	NavigateDelay  time.Duration // pause before the split hand-off fires
	HandoffTTL     time.Duration // how long an unclaimed receipt survives

	// StrictItems makes the allocator reject assignments to unknown item IDs
	// instead of ignoring them.
	StrictItems bool
}

// Load reads configuration from the environment, consulting a .env file if
// one is present. Missing values fall back to development defaults.
func Load() Config {
	// Ignore the error: a missing .env file is the normal production case.
	_ = godotenv.Load()

	return Config{
		Port:           envInt("PORT", 8080),
		DBPath:         envStr("DB_PATH", "./data/budgetly.db"),
		AssistantURL:   envStr("ASSISTANT_URL", "http://localhost:8000/chat"),
		ReceiptURL:     envStr("RECEIPT_URL", "http://localhost:8000/process-receipt"),
		SubmitURL:      envStr("SUBMIT_URL", ""),
		JWTSecret:      envStr("JWT_SECRET", "dev-secret-change-me"),
		TokenDuration:  envDuration("TOKEN_DURATION", 24*time.Hour),
		StreamInterval: envDuration("STREAM_INTERVAL", 30*time.Millisecond),
		NavigateDelay:  envDuration("NAVIGATE_DELAY", 2*time.Second),
		HandoffTTL:     envDuration("HANDOFF_TTL", 10*time.Minute),
		StrictItems:    envBool("STRICT_ITEMS", false),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

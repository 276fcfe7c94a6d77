// Package config loads service configuration from the environment, with a
// .env file honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth for this service's own API. Empty disables auth.
	APIKey string

	// External text-generation service
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	PrimaryModel   string
	SecondaryModel string
	RequestTimeout time.Duration

	// Rate budget toward the external service
	MaxRequestsPerMinute int

	// Segmentation defaults
	MaxChunkSize int
	OverlapSize  int

	// Pipeline concurrency
	MaxConcurrentChunks int

	// Upload limits
	MaxUploadBytes int64

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8080"),

		APIKey: os.Getenv("POLICYLENS_API_KEY"),

		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		PrimaryModel:   envOr("OPENAI_MODEL_PRIMARY", "gpt-4o"),
		SecondaryModel: envOr("OPENAI_MODEL_SECONDARY", "gpt-4o-mini"),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),

		MaxRequestsPerMinute: envInt("MAX_REQUESTS_PER_MINUTE", 50),

		MaxChunkSize: envInt("MAX_CHUNK_SIZE", 4000),
		OverlapSize:  envInt("OVERLAP_SIZE", 200),

		MaxConcurrentChunks: envInt("MAX_CONCURRENT_CHUNKS", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MaxRequestsPerMinute <= 0 {
		cfg.MaxRequestsPerMinute = 50
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = 4000
	}
	if cfg.OverlapSize < 0 {
		cfg.OverlapSize = 200
	}
	if cfg.MaxConcurrentChunks <= 0 {
		cfg.MaxConcurrentChunks = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
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

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
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

// Package config provides environment configuration for the gateway, the
// suggestion service and the terminal client.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	GatewayPort        string
	SuggesterPort      string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Gateway settings
	UpstreamBaseURL  string
	MaxMessageLength int

	// Client settings
	GatewayURL string
	ClientLog  string

	// CORS
	CORSOrigins []string

	// LLM settings
	LLMProvider       string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	ModelName         string

	// Logging
	LogLevel    string
	Environment string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
	ServiceVersion  string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		GatewayPort:        getEnv("GATEWAY_PORT", "3000"),
		SuggesterPort:      getEnv("SUGGESTER_PORT", "8000"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Gateway
		UpstreamBaseURL:  getEnv("UPSTREAM_BASE_URL", "http://localhost:8000"),
		MaxMessageLength: getIntEnv("MAX_MESSAGE_LENGTH", 200),

		// Client
		GatewayURL: getEnv("GATEWAY_URL", "http://localhost:3000"),
		ClientLog:  getEnv("GIFTCTL_LOG", os.DevNull),

		// CORS
		CORSOrigins: getListEnv("CORS_ORIGINS", []string{"http://localhost:3000"}),

		// LLM
		LLMProvider:       getEnv("LLM_PROVIDER", "openrouter"),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		ModelName:         getEnv("MODEL_NAME", "meta-llama/llama-3.3-70b-instruct:free"),

		// Logging
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENV", "production"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
		ServiceVersion:  getEnv("SERVICE_VERSION", "dev"),
	}
}

// LLMAPIKey returns the API key for the configured provider.
func (c *Config) LLMAPIKey() string {
	switch strings.ToLower(c.LLMProvider) {
	case "anthropic":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	default:
		return c.OpenRouterAPIKey
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getListEnv accepts a JSON array or a comma separated list.
func getListEnv(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	var parsed []string
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		return parsed
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

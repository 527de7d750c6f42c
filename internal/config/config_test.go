package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "")
	t.Setenv("MAX_MESSAGE_LENGTH", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("TRACING_ENABLED", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:8000", cfg.UpstreamBaseURL)
	assert.Equal(t, 200, cfg.MaxMessageLength)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "openrouter", cfg.LLMProvider)
	assert.Equal(t, 30*time.Second, cfg.ServerReadTimeout)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://suggester:9000")
	t.Setenv("MAX_MESSAGE_LENGTH", "0")
	t.Setenv("SERVER_WRITE_TIMEOUT", "45s")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "http://suggester:9000", cfg.UpstreamBaseURL)
	assert.Equal(t, 0, cfg.MaxMessageLength)
	assert.Equal(t, 45*time.Second, cfg.ServerWriteTimeout)
	assert.True(t, cfg.TracingEnabled)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_MESSAGE_LENGTH", "lots")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 200, cfg.MaxMessageLength)
	assert.Equal(t, 30*time.Second, cfg.ServerReadTimeout)
	assert.False(t, cfg.TracingEnabled)
}

func TestGetListEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"json array", `["http://localhost:3000", "https://gifts.example.com"]`, []string{"http://localhost:3000", "https://gifts.example.com"}},
		{"comma separated", "http://a.example, https://b.example ,", []string{"http://a.example", "https://b.example"}},
		{"single", "https://gifts.example.com", []string{"https://gifts.example.com"}},
		{"only commas", ",,", []string{"fallback"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_LIST", tt.value)
			assert.Equal(t, tt.want, getListEnv("TEST_LIST", []string{"fallback"}))
		})
	}
}

func TestLLMAPIKey(t *testing.T) {
	cfg := &Config{
		OpenRouterAPIKey: "or-key",
		OpenAIAPIKey:     "oa-key",
		AnthropicAPIKey:  "an-key",
	}

	cfg.LLMProvider = "openrouter"
	assert.Equal(t, "or-key", cfg.LLMAPIKey())

	cfg.LLMProvider = "OpenAI"
	assert.Equal(t, "oa-key", cfg.LLMAPIKey())

	cfg.LLMProvider = "anthropic"
	assert.Equal(t, "an-key", cfg.LLMAPIKey())
}

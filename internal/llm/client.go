// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	System      string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64

	// JSONMode asks the provider for a single JSON object when it supports it.
	JSONMode bool
}

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
)

// DefaultOpenRouterBaseURL is the OpenAI-compatible OpenRouter endpoint.
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Options configures NewClient.
type Options struct {
	APIKey  string
	BaseURL string
}

// NewClient creates a new LLM client based on provider.
func NewClient(provider Provider, opts Options) (Client, error) {
	switch Provider(strings.ToLower(string(provider))) {
	case ProviderOpenRouter, "":
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = DefaultOpenRouterBaseURL
		}
		return NewOpenAIClient(opts.APIKey, WithBaseURL(baseURL), WithProviderName(string(ProviderOpenRouter)))
	case ProviderOpenAI:
		return NewOpenAIClient(opts.APIKey)
	case ProviderAnthropic:
		return NewAnthropicClient(opts.APIKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

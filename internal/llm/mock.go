package llm

import (
	"context"
	"sync"
)

// MockClient is a mock LLM client for testing.
type MockClient struct {
	Response string
	Error    error

	mu          sync.Mutex
	callCount   int
	lastRequest *CompletionRequest
}

// NewMockClient creates a new mock LLM client.
func NewMockClient(response string) *MockClient {
	return &MockClient{Response: response}
}

// Complete returns the mock response.
func (c *MockClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	c.mu.Lock()
	c.callCount++
	c.lastRequest = req
	c.mu.Unlock()

	if c.Error != nil {
		return nil, c.Error
	}

	return &CompletionResponse{
		Content:   c.Response,
		Model:     "mock-model",
		TokensIn:  len(req.System) / 4,
		TokensOut: len(c.Response) / 4,
	}, nil
}

// CallCount returns the number of Complete calls.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callCount
}

// LastRequest returns the most recent request, or nil.
func (c *MockClient) LastRequest() *CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRequest
}

// Name returns the mock provider.
func (c *MockClient) Name() string {
	return "mock"
}

// Models returns the mock model name.
func (c *MockClient) Models() []string {
	return []string{"mock-model"}
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient(ProviderOpenRouter, Options{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, "openrouter", c.Name())

	c, err = NewClient("", Options{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, "openrouter", c.Name())

	c, err = NewClient(ProviderOpenAI, Options{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())

	c, err = NewClient("Anthropic", Options{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", c.Name())

	_, err = NewClient("cohere", Options{APIKey: "key"})
	assert.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	for _, p := range []Provider{ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic} {
		_, err := NewClient(p, Options{})
		assert.Error(t, err, p)
	}
}

func TestOpenAIClientCompleteAgainstCompatibleServer(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"model": "meta-llama/llama-3.3-70b-instruct:free",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"suggestions\":[]}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
		}`))
	}))
	defer server.Close()

	c, err := NewOpenAIClient("test-key", WithBaseURL(server.URL), WithProviderName("openrouter"))
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), &CompletionRequest{
		System:   "be helpful",
		Messages: []ChatMessage{{Role: "user", Content: "gift for my dad"}},
		JSONMode: true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"suggestions":[]}`, resp.Content)
	assert.Equal(t, 12, resp.TokensIn)
	assert.Equal(t, 7, resp.TokensOut)
	assert.Equal(t, "stop", resp.StopReason)

	assert.Equal(t, "meta-llama/llama-3.3-70b-instruct:free", got["model"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
	assert.Equal(t, "json_object", got["response_format"].(map[string]any)["type"])
}

func TestMockClient(t *testing.T) {
	m := NewMockClient("hello")
	resp, err := m.Complete(context.Background(), &CompletionRequest{System: "sys"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, 1, m.CallCount())
	assert.Equal(t, "sys", m.LastRequest().System)
}

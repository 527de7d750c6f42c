package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/gift-suggester/internal/llm"
	"github.com/capitalize-ai/gift-suggester/internal/model"
	"github.com/capitalize-ai/gift-suggester/internal/service"
	"github.com/capitalize-ai/gift-suggester/pkg/logger"
)

func newSuggestHandler(client llm.Client) *SuggestHandler {
	svc := service.NewSuggestionService(client, "test-model", logger.NewNop())
	return NewSuggestHandler(svc, []string{"http://localhost:3000"}, logger.NewNop())
}

func TestSuggestHandler(t *testing.T) {
	validBody := `{"user_message":"My 30-year-old brother loves indie games, filter coffee, and hiking. Budget around $80."}`

	tests := []struct {
		name       string
		body       string
		llmContent string
		llmErr     error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "success",
			body:       validBody,
			llmContent: twoSuggestions,
			wantStatus: http.StatusOK,
		},
		{
			name:       "short message",
			body:       `{"user_message":"short"}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "Message must be at least 20 characters",
		},
		{
			name:       "invalid json",
			body:       `{invalid}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: model.DetailInvalidBody,
		},
		{
			name:       "long message accepted",
			body:       `{"user_message":"` + strings.Repeat("a", 300) + `"}`,
			llmContent: twoSuggestions,
			wantStatus: http.StatusOK,
		},
		{
			name:       "llm failure",
			body:       validBody,
			llmErr:     errors.New("upstream model timeout"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Failed to generate gift suggestions. Please try again.",
		},
		{
			name:       "malformed model output",
			body:       validBody,
			llmContent: "Sorry, I can't do that.",
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Failed to generate gift suggestions. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockClient(tt.llmContent)
			mock.Error = tt.llmErr
			h := newSuggestHandler(mock)

			req := httptest.NewRequest(http.MethodPost, "/api/suggest-gift", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Suggest(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, decodeDetail(t, rec))
				return
			}

			var resp model.SuggestionResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Len(t, resp.Suggestions, 2)
			assert.Equal(t, "Pair the kit with local beans.", resp.Notes)
		})
	}
}

func TestSuggestHandlerNotConfigured(t *testing.T) {
	h := newSuggestHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/suggest-gift",
		strings.NewReader(`{"user_message":"My dad likes woodworking and old jazz"}`))
	rec := httptest.NewRecorder()
	h.Suggest(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Gift suggestion model is not configured", decodeDetail(t, rec))
}

func TestSuggestHandlerHealth(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		h := newSuggestHandler(llm.NewMockClient(""))
		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		var resp model.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.True(t, resp.ConfigLoaded)
		assert.Equal(t, []string{"http://localhost:3000"}, resp.CORSOrigins)
	})

	t.Run("not configured", func(t *testing.T) {
		h := newSuggestHandler(nil)
		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		var resp model.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.False(t, resp.ConfigLoaded)
		assert.NotEmpty(t, resp.Warning)
	})
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandlerReady(t *testing.T) {
	ready := NewHealthHandler(pingFunc(func(context.Context) error { return nil }))
	rec := httptest.NewRecorder()
	ready.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	notReady := NewHealthHandler(pingFunc(func(context.Context) error { return errors.New("refused") }))
	rec = httptest.NewRecorder()
	notReady.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	NewHealthHandler(nil).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGatewayPing(t *testing.T) {
	upstream := newFakeUpstream(t, respondWith(http.StatusOK, `{"status":"healthy"}`))
	h := newGateway(t, upstream.server.URL, model.MaxMessageLength)

	require.NoError(t, h.Ping(context.Background()))
	assert.Equal(t, UpstreamHealthPath, upstream.paths[0])

	failing := newFakeUpstream(t, respondWith(http.StatusInternalServerError, `{}`))
	h = newGateway(t, failing.server.URL, model.MaxMessageLength)
	assert.Error(t, h.Ping(context.Background()))
}

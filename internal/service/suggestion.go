// Package service provides the gift suggestion business logic behind the
// suggestion service.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/gift-suggester/internal/llm"
	"github.com/capitalize-ai/gift-suggester/internal/model"
	"github.com/capitalize-ai/gift-suggester/pkg/logger"
	"github.com/capitalize-ai/gift-suggester/pkg/metrics"
)

var (
	// ErrLLMNotConfigured is returned when no LLM client is available.
	ErrLLMNotConfigured = errors.New("gift suggestion model is not configured")

	// ErrMalformedOutput is returned when the model answer cannot be used.
	ErrMalformedOutput = errors.New("model returned malformed suggestions")
)

const systemPrompt = `You are a gift suggestion assistant. The user describes someone they need a gift for.
Suggest 3 thoughtful, personalized gift ideas.

Take into account the person's interests and hobbies, age and life stage, relationship to the
giver, any stated preferences or constraints, and the budget if one is given.

For every suggestion give the gift name, a clear reason why it suits the person, a realistic
price range, and 2-3 places where it can be bought. Be creative but practical.

Answer with a single JSON object and nothing else, using exactly this shape:
{"suggestions":[{"gift_name":"...","reason":"...","price_range":"...","where_to_buy":["..."]}],"additional_notes":"..."}`

// SuggestionService turns a recipient description into gift suggestions.
type SuggestionService struct {
	llmClient llm.Client
	model     string
	logger    *logger.Logger
}

// NewSuggestionService creates a new suggestion service. llmClient may be
// nil, in which case Generate reports ErrLLMNotConfigured.
func NewSuggestionService(llmClient llm.Client, modelName string, log *logger.Logger) *SuggestionService {
	return &SuggestionService{
		llmClient: llmClient,
		model:     modelName,
		logger:    log,
	}
}

// Configured reports whether an LLM client is available.
func (s *SuggestionService) Configured() bool {
	return s.llmClient != nil
}

// Generate asks the model for suggestions for req.
func (s *SuggestionService) Generate(ctx context.Context, req model.SuggestionRequest) (*model.SuggestionResponse, error) {
	if s.llmClient == nil {
		return nil, ErrLLMNotConfigured
	}

	s.logger.Info("processing gift request",
		zap.String("message_preview", preview(req.UserMessage, 50)),
		zap.String("provider", s.llmClient.Name()),
	)

	start := time.Now()
	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		Model:       s.model,
		System:      systemPrompt,
		Messages:    []llm.ChatMessage{{Role: "user", Content: userPrompt(req)}},
		MaxTokens:   2048,
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		metrics.RecordLLMCompletion(s.model, "error", time.Since(start).Seconds(), 0, 0)
		s.logger.Error("LLM completion failed", zap.Error(err))
		return nil, fmt.Errorf("LLM completion failed: %w", err)
	}

	result, err := parseSuggestions(resp.Content)
	if err != nil {
		metrics.RecordLLMCompletion(resp.Model, "malformed", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)
		s.logger.Warn("discarding malformed model output",
			zap.Error(err),
			zap.String("stop_reason", resp.StopReason),
		)
		return nil, err
	}

	metrics.RecordLLMCompletion(resp.Model, "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)
	metrics.SuggestionsGenerated.Observe(float64(len(result.Suggestions)))
	s.logger.Info("generated suggestions",
		zap.Int("count", len(result.Suggestions)),
		zap.String("model", resp.Model),
		zap.Int64("latency_ms", resp.LatencyMs),
	)

	return result, nil
}

// userPrompt appends optional context as sorted "key: value" lines.
func userPrompt(req model.SuggestionRequest) string {
	if len(req.Context) == 0 {
		return req.UserMessage
	}

	keys := make([]string, 0, len(req.Context))
	for k := range req.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(req.UserMessage)
	b.WriteString("\n\nAdditional context:")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %s", k, req.Context[k])
	}
	return b.String()
}

// parseSuggestions extracts the JSON object from the model answer, which may
// be wrapped in prose or a code fence.
func parseSuggestions(content string) (*model.SuggestionResponse, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in answer", ErrMalformedOutput)
	}

	var resp model.SuggestionResponse
	if err := json.Unmarshal([]byte(content[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	if len(resp.Suggestions) == 0 {
		return nil, fmt.Errorf("%w: no suggestions", ErrMalformedOutput)
	}
	for i, s := range resp.Suggestions {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("%w: suggestion %d has no name", ErrMalformedOutput, i)
		}
		if len(s.WhereToBuy) == 0 {
			return nil, fmt.Errorf("%w: suggestion %d has no stores", ErrMalformedOutput, i)
		}
	}

	return &resp, nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

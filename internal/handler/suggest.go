package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/capitalize-ai/gift-suggester/internal/middleware"
	"github.com/capitalize-ai/gift-suggester/internal/model"
	"github.com/capitalize-ai/gift-suggester/internal/service"
	"github.com/capitalize-ai/gift-suggester/pkg/logger"
)

const (
	detailGenerationFailed = "Failed to generate gift suggestions. Please try again."
	detailNotConfigured    = "Gift suggestion model is not configured"
)

// SuggestHandler serves the suggestion service API.
type SuggestHandler struct {
	suggestionService *service.SuggestionService
	corsOrigins       []string
	logger            *logger.Logger
}

// NewSuggestHandler creates a new suggestion service handler.
func NewSuggestHandler(svc *service.SuggestionService, corsOrigins []string, log *logger.Logger) *SuggestHandler {
	return &SuggestHandler{
		suggestionService: svc,
		corsOrigins:       corsOrigins,
		logger:            log,
	}
}

// Suggest handles POST /api/suggest-gift
func (h *SuggestHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.logger.WithCorrelationID(middleware.GetCorrelationID(ctx))

	var req model.SuggestionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, model.DetailInvalidBody)
		return
	}

	// Only the lower bound applies here; the gateway owns the upper bound.
	if err := req.Validate(0); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.suggestionService.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrLLMNotConfigured) {
			log.Error("suggestion requested without a configured model")
			writeDetail(w, http.StatusServiceUnavailable, detailNotConfigured)
			return
		}
		log.Error("failed to generate suggestions", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, detailGenerationFailed)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /api/health
func (h *SuggestHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !h.suggestionService.Configured() {
		writeJSON(w, http.StatusOK, model.HealthResponse{
			Status:       "healthy",
			ConfigLoaded: false,
			Warning:      "Configuration may be incomplete",
		})
		return
	}

	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:       "healthy",
		ConfigLoaded: true,
		CORSOrigins:  h.corsOrigins,
	})
}

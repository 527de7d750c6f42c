package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/capitalize-ai/gift-suggester/internal/middleware"
	"github.com/capitalize-ai/gift-suggester/internal/model"
	"github.com/capitalize-ai/gift-suggester/pkg/logger"
	"github.com/capitalize-ai/gift-suggester/pkg/metrics"
)

const (
	// DefaultUpstreamBaseURL is used when no upstream base URL is configured.
	DefaultUpstreamBaseURL = "http://localhost:8000"

	// UpstreamSuggestPath is appended to the upstream base URL.
	UpstreamSuggestPath = "/api/suggest-gift"

	// UpstreamHealthPath is probed by Ping.
	UpstreamHealthPath = "/api/health"

	maxRequestBytes = 64 << 10

	// statusClientClosedRequest is reported when the caller goes away
	// before the upstream answers.
	statusClientClosedRequest = 499
	detailCanceled            = "Request canceled"
	outcomeCanceled           = "canceled"
)

// GatewayConfig configures a GatewayHandler.
type GatewayConfig struct {
	// UpstreamBaseURL is the suggestion service base URL. Empty means
	// DefaultUpstreamBaseURL.
	UpstreamBaseURL string

	// MaxMessageLength is the upper bound on user_message in characters.
	// Zero disables the upper bound; the lower bound is always enforced.
	MaxMessageLength int

	// HTTPClient performs the upstream call. Nil means a client with the
	// default transport and no timeout.
	HTTPClient *http.Client
}

// GatewayHandler validates suggestion requests and relays them to the
// suggestion service. It holds no per-request state and is safe for
// concurrent use.
type GatewayHandler struct {
	upstreamURL      string
	healthURL        string
	maxMessageLength int
	httpClient       *http.Client
	logger           *logger.Logger
}

// NewGatewayHandler creates a new gateway handler.
func NewGatewayHandler(cfg GatewayConfig, log *logger.Logger) (*GatewayHandler, error) {
	base := cfg.UpstreamBaseURL
	if base == "" {
		base = DefaultUpstreamBaseURL
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid upstream base URL %q: scheme must be http or https", base)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid upstream base URL %q: missing host", base)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	base = strings.TrimRight(base, "/")

	return &GatewayHandler{
		upstreamURL:      base + UpstreamSuggestPath,
		healthURL:        base + UpstreamHealthPath,
		maxMessageLength: cfg.MaxMessageLength,
		httpClient:       client,
		logger:           log,
	}, nil
}

// UpstreamURL returns the full URL requests are relayed to.
func (h *GatewayHandler) UpstreamURL() string {
	return h.upstreamURL
}

// Ping checks that the suggestion service answers its health endpoint. It
// is used for readiness only and never on the suggestion path.
func (h *GatewayHandler) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.healthURL, nil)
	if err != nil {
		return err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("suggestion service health returned %d", resp.StatusCode)
	}
	return nil
}

// relayError is a terminal failure of one relay, already mapped to the
// status and detail returned to the caller.
type relayError struct {
	class    model.ErrorClass
	status   int
	detail   string
	cause    error
	canceled bool
}

func (e *relayError) Error() string {
	if e.canceled {
		return fmt.Sprintf("%s: %v", outcomeCanceled, e.cause)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.class, e.detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.class, e.detail)
}

func (e *relayError) Unwrap() error {
	return e.cause
}

func validationFailure(detail string, cause error) *relayError {
	return &relayError{class: model.ClassValidation, status: http.StatusBadRequest, detail: detail, cause: cause}
}

func internalFault(cause error) *relayError {
	return &relayError{class: model.ClassInternalFault, status: http.StatusInternalServerError, detail: model.DetailInternal, cause: cause}
}

// Suggest handles POST /api/suggest
func (h *GatewayHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.logger.WithCorrelationID(middleware.GetCorrelationID(ctx))

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic while relaying suggestion request", zap.Any("panic", rec), zap.Stack("stack"))
			h.fail(ctx, w, log, internalFault(fmt.Errorf("panic: %v", rec)))
		}
	}()

	body, err := h.relay(ctx, w, r)
	if err != nil {
		h.fail(ctx, w, log, err)
		return
	}

	metrics.RecordRelay("ok")
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("gateway.outcome", "ok"))
	writeRaw(w, http.StatusOK, body)
}

func (h *GatewayHandler) relay(ctx context.Context, w http.ResponseWriter, r *http.Request) ([]byte, error) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		return nil, validationFailure(model.DetailInvalidBody, err)
	}

	req, err := decodeSuggestionRequest(payload)
	if err != nil {
		return nil, validationFailure(model.DetailInvalidBody, err)
	}

	if err := req.Validate(h.maxMessageLength); err != nil {
		return nil, validationFailure(err.Error(), err)
	}

	// The validated body goes upstream as received so optional fields,
	// including an empty context map, arrive unchanged.
	return h.forward(ctx, payload)
}

// decodeSuggestionRequest reads the request fields by their exact wire
// names. encoding/json folds case when decoding into a struct, which would
// accept keys the suggestion service does not recognize.
func decodeSuggestionRequest(payload []byte) (model.SuggestionRequest, error) {
	var req model.SuggestionRequest

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return req, err
	}

	if raw, ok := fields["user_message"]; ok {
		var msg *string
		if err := json.Unmarshal(raw, &msg); err != nil {
			return req, fmt.Errorf("user_message: %w", err)
		}
		if msg != nil {
			req.UserMessage = *msg
		}
	}

	if raw, ok := fields["context"]; ok {
		if err := json.Unmarshal(raw, &req.Context); err != nil {
			return req, fmt.Errorf("context: %w", err)
		}
	}

	return req, nil
}

// forward performs the single upstream attempt.
func (h *GatewayHandler) forward(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.upstreamURL, bytes.NewReader(payload))
	if err != nil {
		return nil, internalFault(fmt.Errorf("build upstream request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := middleware.GetCorrelationID(ctx); id != "" {
		req.Header.Set(middleware.CorrelationIDHeader, id)
	}

	start := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			metrics.RecordUpstream(outcomeCanceled, time.Since(start).Seconds())
			return nil, &relayError{
				status:   statusClientClosedRequest,
				detail:   detailCanceled,
				cause:    err,
				canceled: true,
			}
		}
		metrics.RecordUpstream("unreachable", time.Since(start).Seconds())
		return nil, &relayError{
			class:  model.ClassUpstreamUnreachable,
			status: http.StatusServiceUnavailable,
			detail: model.DetailUpstreamUnreachable,
			cause:  err,
		}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	metrics.RecordUpstream(strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := model.ErrorResponse{Detail: model.DetailBackendUnavailable}
		if readErr == nil {
			detail = decodeErrorDetail(body)
		}
		return nil, &relayError{
			class:  model.ClassUpstreamRejected,
			status: resp.StatusCode,
			detail: detail.Detail,
			cause:  fmt.Errorf("upstream responded %d", resp.StatusCode),
		}
	}

	if readErr != nil {
		return nil, internalFault(fmt.Errorf("read upstream body: %w", readErr))
	}
	if !json.Valid(body) {
		return nil, internalFault(errors.New("upstream success body is not valid JSON"))
	}

	return body, nil
}

// decodeErrorDetail decodes an upstream {"detail": "..."} payload. Anything
// else, including an empty detail, yields the fixed fallback.
func decodeErrorDetail(body []byte) model.ErrorResponse {
	var payload model.ErrorResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.Detail == "" {
		return model.ErrorResponse{Detail: model.DetailBackendUnavailable}
	}
	return payload
}

func (h *GatewayHandler) fail(ctx context.Context, w http.ResponseWriter, log *logger.Logger, err error) {
	var re *relayError
	if !errors.As(err, &re) {
		re = internalFault(err)
	}

	if re.canceled {
		log.Info("caller canceled suggestion request", zap.Error(re.cause))
		metrics.RecordRelay(outcomeCanceled)
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("gateway.outcome", outcomeCanceled))
		writeDetail(w, re.status, re.detail)
		return
	}

	fields := []zap.Field{
		zap.String("class", string(re.class)),
		zap.Int("status", re.status),
		zap.Error(re.cause),
	}
	switch re.class {
	case model.ClassValidation:
		log.Info("rejected suggestion request", fields...)
	case model.ClassUpstreamRejected:
		log.Warn("suggestion service rejected request", fields...)
	default:
		log.Error("suggestion relay failed", fields...)
	}

	metrics.RecordRelay(string(re.class))
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("gateway.outcome", string(re.class)),
		attribute.Int("gateway.status", re.status),
	)

	writeDetail(w, re.status, re.detail)
}

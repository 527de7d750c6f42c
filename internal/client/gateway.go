// Package client calls the gift suggestion gateway.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/capitalize-ai/gift-suggester/internal/model"
)

// SuggestPath is the gateway suggestion endpoint.
const SuggestPath = "/api/suggest"

// DetailFallback is used when the gateway error body carries no detail.
const DetailFallback = "Failed to get suggestions"

// APIError is a non-2xx gateway response.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.StatusCode, e.Detail)
}

// Class maps the gateway status to the error class it was produced for.
func (e *APIError) Class() model.ErrorClass {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return model.ClassValidation
	case http.StatusServiceUnavailable:
		return model.ClassUpstreamUnreachable
	case http.StatusInternalServerError:
		return model.ClassInternalFault
	default:
		return model.ClassUpstreamRejected
	}
}

// ErrorDetail returns the user-facing form of the error.
func (e *APIError) ErrorDetail() model.ErrorDetail {
	return model.ErrorDetail{Message: e.Detail, Class: e.Class()}
}

// ResponseError is a 2xx gateway response whose body could not be decoded.
type ResponseError struct {
	Err error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// ErrorDetail returns the user-facing form of the error.
func (e *ResponseError) ErrorDetail() model.ErrorDetail {
	return model.ErrorDetail{Message: model.DetailSomethingWrong, Class: model.ClassInternalFault}
}

// GatewayClient posts suggestion requests to the gateway.
type GatewayClient struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a GatewayClient.
type Option func(*GatewayClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *GatewayClient) { g.httpClient = c }
}

// NewGatewayClient creates a client for the gateway at baseURL.
func NewGatewayClient(baseURL string, opts ...Option) *GatewayClient {
	g := &GatewayClient{
		endpoint:   strings.TrimRight(baseURL, "/") + SuggestPath,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Suggest sends req and returns the decoded suggestions. Non-2xx responses
// are returned as *APIError and undecodable 2xx bodies as *ResponseError.
func (g *GatewayClient) Suggest(ctx context.Context, req model.SuggestionRequest) (*model.SuggestionResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", g.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := DetailFallback
		var e model.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Detail != "" {
			detail = e.Detail
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: detail}
	}

	var out model.SuggestionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ResponseError{Err: err}
	}
	return &out, nil
}

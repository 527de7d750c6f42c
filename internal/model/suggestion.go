// Package model defines data structures shared by the gateway, the
// suggestion service and the client.
package model

// SuggestionRequest is the payload accepted by the gateway and forwarded
// to the suggestion service.
type SuggestionRequest struct {
	UserMessage string            `json:"user_message"`
	Context     map[string]string `json:"context,omitempty"`
}

// GiftSuggestion is a single suggestion produced by the suggestion service.
type GiftSuggestion struct {
	Name       string   `json:"gift_name"`
	Reason     string   `json:"reason"`
	PriceRange string   `json:"price_range"`
	WhereToBuy []string `json:"where_to_buy"`
}

// SuggestionResponse is the result of one request/response cycle.
type SuggestionResponse struct {
	Suggestions []GiftSuggestion `json:"suggestions"`
	Notes       string           `json:"additional_notes"`
}

// HealthResponse is returned by the suggestion service health endpoint.
type HealthResponse struct {
	Status       string   `json:"status"`
	ConfigLoaded bool     `json:"config_loaded"`
	CORSOrigins  []string `json:"cors_origins,omitempty"`
	Warning      string   `json:"warning,omitempty"`
}

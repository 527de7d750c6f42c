package model

// ErrorClass classifies a failed suggestion request, from most to least
// specific.
type ErrorClass string

const (
	ClassValidation          ErrorClass = "validation_error"
	ClassUpstreamRejected    ErrorClass = "upstream_rejected"
	ClassUpstreamUnreachable ErrorClass = "upstream_unreachable"
	ClassInternalFault       ErrorClass = "internal_fault"
)

// Fixed error details returned by the gateway.
const (
	DetailInvalidBody         = "Invalid request body"
	DetailBackendUnavailable  = "Backend service unavailable"
	DetailUpstreamUnreachable = "Unable to connect to gift suggestion service"
	DetailInternal            = "Internal server error"
)

// DetailSomethingWrong is shown by clients for failures that carry no
// gateway detail.
const DetailSomethingWrong = "Something went wrong"

// ErrorResponse is the JSON error payload used on every error path.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ErrorDetail is a failure as presented to the user.
type ErrorDetail struct {
	Message string     `json:"message"`
	Class   ErrorClass `json:"class"`
}

func (d ErrorDetail) Error() string {
	return d.Message
}

package model

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// MinMessageLength is the minimum user message length in characters.
	MinMessageLength = 20
	// MaxMessageLength is the maximum user message length in characters.
	MaxMessageLength = 200
)

var (
	ErrMessageTooShort = fmt.Errorf("Message must be at least %d characters", MinMessageLength)
	ErrMessageInvalid  = errors.New("Message must be valid UTF-8")
)

// MessageTooLongError reports a message above the configured upper bound.
type MessageTooLongError struct {
	Max int
}

func (e *MessageTooLongError) Error() string {
	return fmt.Sprintf("Message must be at most %d characters", e.Max)
}

// ValidateUserMessage checks the message length in characters. A max of
// zero or less disables the upper bound.
func ValidateUserMessage(message string, max int) error {
	if !utf8.ValidString(message) {
		return ErrMessageInvalid
	}
	n := utf8.RuneCountInString(message)
	if n < MinMessageLength {
		return ErrMessageTooShort
	}
	if max > 0 && n > max {
		return &MessageTooLongError{Max: max}
	}
	return nil
}

// Validate checks the request against the message length bounds.
func (r SuggestionRequest) Validate(max int) error {
	return ValidateUserMessage(r.UserMessage, max)
}

// IsValidationError reports whether err came from message validation.
func IsValidationError(err error) bool {
	var tooLong *MessageTooLongError
	return errors.Is(err, ErrMessageTooShort) ||
		errors.Is(err, ErrMessageInvalid) ||
		errors.As(err, &tooLong)
}

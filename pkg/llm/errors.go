package llm

import (
	"errors"
	"fmt"
)

// ErrorType classifies a failed LLM call.
type ErrorType string

const (
	// ErrorTypeTransport covers network failures and non-2xx responses.
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeMalformedResponse covers 2xx responses missing the expected
	// fields (no choices, empty content).
	ErrorTypeMalformedResponse ErrorType = "malformed_response"
)

// Error represents a structured LLM error with classification.
type Error struct {
	Type    ErrorType // Classification of the error
	Message string    // Human-readable message
	Cause   error     // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured LLM error.
func NewError(errType ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// GetErrorType extracts the ErrorType from an error. Unclassified errors
// report as transport failures, the conservative default for anything that
// crossed the network boundary.
func GetErrorType(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeTransport
}

// IsMalformedResponse reports whether err is a malformed-response failure.
func IsMalformedResponse(err error) bool {
	var llmErr *Error
	return errors.As(err, &llmErr) && llmErr.Type == ErrorTypeMalformedResponse
}

package channel

import (
	"errors"
	"fmt"
)

// ErrorCodeUnhandled is the code used when a handler fails with an error that is not a *Error.
const ErrorCodeUnhandled = "UNHANDLED_ERROR"

// ErrNotImplemented signals that the requested method is not known to the channel.
// It is distinct from an operational failure.
var ErrNotImplemented = errors.New("method not implemented")

// Error is the structured failure carried back to the caller: a machine-readable code,
// a human-readable message and optional diagnostic details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// NewError builds an *Error.
func NewError(code, message string, details any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// toResponse maps a handler error onto a response.
func toResponse(err error) Response {
	if errors.Is(err, ErrNotImplemented) {
		return NotImplemented()
	}
	var chErr *Error
	if errors.As(err, &chErr) {
		return Failure(chErr)
	}
	return Failure(NewError(ErrorCodeUnhandled, err.Error(), nil))
}

package auth

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"
)

// Code is the machine-readable category attached to every authentication
// failure surfaced to callers.
type Code string

const (
	CodeValidation        Code = "validation_error"
	CodeInvalidCredential Code = "invalid_credential"
	CodeInvalidCode       Code = "invalid_code"
	CodeChallengeFailed   Code = "challenge_failed"
	CodeChallengeExpired  Code = "challenge_expired"
	CodeRateLimited       Code = "rate_limited"
	CodeNetwork           Code = "network_error"
	CodeUnknown           Code = "unknown"
)

// Error is a classified authentication failure. Message is user-facing and
// never contains provider-internal wording; the underlying cause is kept for
// logs only.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError builds a classified error with a user-facing message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError attaches a cause to a classified error for diagnostics.
func WrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the category from err, or CodeUnknown when err carries none.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Recoverable reports whether the user may retry immediately without a fresh
// remote call. Only local validation and challenge-related failures qualify.
func Recoverable(code Code) bool {
	switch code {
	case CodeValidation, CodeChallengeFailed, CodeChallengeExpired:
		return true
	}
	return false
}

// Classify normalizes an arbitrary failure into a classified Error. Already
// classified errors pass through; context and transport failures become
// network errors; everything else is Unknown and logged with full context.
func Classify(logger *zap.Logger, err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return WrapError(CodeNetwork, "The request was cancelled or timed out.", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return WrapError(CodeNetwork, "A network error occurred. Check your connection and try again.", err)
	}
	if logger != nil {
		logger.Error("Unclassified authentication failure", zap.Error(err))
	}
	return WrapError(CodeUnknown, "Something went wrong. Please try again.", err)
}

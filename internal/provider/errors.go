package provider

import (
	"errors"
	"fmt"
)

// Error codes for categorizing provider errors
const (
	ErrCodeUnsupported       = "UNSUPPORTED_OPERATION"
	ErrCodeUpstream          = "UPSTREAM_ERROR"
	ErrCodeRateLimit         = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnknownProvider   = "UNKNOWN_PROVIDER"
	ErrCodeDuplicateProvider = "DUPLICATE_PROVIDER"
)

// Error represents a categorized error from a provider operation.
type Error struct {
	Code     string    // Error category code
	Provider string    // ID of the affected provider ("" if not applicable)
	Op       Operation // Operation that failed ("" if not applicable)
	Message  string    // Human-readable message
	Cause    error     // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Provider, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is().
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel instances for comparison with errors.Is.
var (
	ErrUnsupported       = &Error{Code: ErrCodeUnsupported, Message: "operation not supported"}
	ErrUpstream          = &Error{Code: ErrCodeUpstream, Message: "upstream request failed"}
	ErrRateLimit         = &Error{Code: ErrCodeRateLimit, Message: "rate limit exceeded"}
	ErrUnknownProvider   = &Error{Code: ErrCodeUnknownProvider, Message: "unknown provider"}
	ErrDuplicateProvider = &Error{Code: ErrCodeDuplicateProvider, Message: "provider already registered"}
)

// NewUnsupportedError creates an error for an operation the provider's
// declared capabilities exclude. Callers should hide the affordance,
// not retry.
func NewUnsupportedError(providerID string, op Operation) *Error {
	return &Error{
		Code:     ErrCodeUnsupported,
		Provider: providerID,
		Op:       op,
		Message:  fmt.Sprintf("operation %q not supported", op),
	}
}

// NewUpstreamError creates an error for a failed upstream exchange:
// non-2xx status, timeout, or malformed body.
func NewUpstreamError(providerID string, op Operation, cause error) *Error {
	msg := "upstream request failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:     ErrCodeUpstream,
		Provider: providerID,
		Op:       op,
		Message:  msg,
		Cause:    cause,
	}
}

// NewRateLimitError creates an error for a governor queue that is full.
// Callers should back off and retry later.
func NewRateLimitError(providerID string) *Error {
	return &Error{
		Code:     ErrCodeRateLimit,
		Provider: providerID,
		Message:  "rate limit queue exhausted",
	}
}

// NewUnknownProviderError creates an error for a provider id that is not
// registered. Programmer error; fail fast.
func NewUnknownProviderError(providerID string) *Error {
	return &Error{
		Code:     ErrCodeUnknownProvider,
		Provider: providerID,
		Message:  fmt.Sprintf("provider %q not registered", providerID),
	}
}

// NewDuplicateProviderError creates an error for a provider id that is
// already registered. Programmer error; fail fast.
func NewDuplicateProviderError(providerID string) *Error {
	return &Error{
		Code:     ErrCodeDuplicateProvider,
		Provider: providerID,
		Message:  fmt.Sprintf("provider %q already registered", providerID),
	}
}

// IsUnsupported returns whether the error is an unsupported-operation error.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// IsUpstream returns whether the error is an upstream error.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsRateLimited returns whether the error is a rate limit error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimit)
}

// IsUnknownProvider returns whether the error is an unknown-provider error.
func IsUnknownProvider(err error) bool {
	return errors.Is(err, ErrUnknownProvider)
}

// ErrorCode extracts the category code from an error.
func ErrorCode(err error) string {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ""
}

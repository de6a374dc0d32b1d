package models

import (
	"errors"
	"fmt"
)

// Error codes used by the scraper, the CLI and API responses.
const (
	ErrCodeInvalidURL      = "INVALID_URL"
	ErrCodePolicyViolation = "POLICY_VIOLATION"
	ErrCodeNetwork         = "NETWORK_ERROR"
	ErrCodeHTTPStatus      = "HTTP_STATUS"
	ErrCodeSelectorSyntax  = "SELECTOR_SYNTAX"
	ErrCodeNoMatch         = "NO_MATCH"

	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	// StatusCode is the upstream HTTP status for ErrCodeHTTPStatus.
	StatusCode int
	Err        error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// NewHTTPStatusError reports a non-2xx response from the target page.
func NewHTTPStatusError(statusCode int, reason string) *ScrapeError {
	return &ScrapeError{
		Code:       ErrCodeHTTPStatus,
		Message:    fmt.Sprintf("HTTP error: %d - %s", statusCode, reason),
		StatusCode: statusCode,
	}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Error(), StatusCode: e.StatusCode}
}

// CodeOf returns the code of the first ScrapeError in err's chain, or
// ErrCodeInternal for any other non-nil error.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// AsScrapeError returns err as a *ScrapeError, wrapping foreign errors as
// ErrCodeInternal.
func AsScrapeError(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return NewScrapeError(ErrCodeInternal, "internal error", err)
}

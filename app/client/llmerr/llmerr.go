// Package llmerr maps backend failures onto the langchaingo error codes the
// completion fallback loop switches on.
package llmerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
)

// StatusOverloaded is the non-standard status some providers use when a model
// is temporarily overloaded.
const StatusOverloaded = 529

func CodeForStatus(status int) llms.ErrorCode {
	switch status {
	case http.StatusTooManyRequests:
		return llms.ErrCodeRateLimit
	case http.StatusBadRequest:
		return llms.ErrCodeInvalidRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return llms.ErrCodeAuthentication
	case http.StatusNotFound:
		return llms.ErrCodeResourceNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return llms.ErrCodeTimeout
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, StatusOverloaded:
		return llms.ErrCodeProviderUnavailable
	default:
		return llms.ErrCodeUnknown
	}
}

// FromStatus builds a standardized error for an HTTP failure.
func FromStatus(provider string, status int, message string, cause error) *llms.Error {
	if message == "" {
		message = fmt.Sprintf("http status %d", status)
	}

	return llms.NewError(CodeForStatus(status), provider, message).
		WithCause(cause).
		WithDetail("status", status)
}

// FromTransport classifies an error that carried no HTTP status.
func FromTransport(provider string, err error) *llms.Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return llms.NewError(llms.ErrCodeTimeout, provider, "request timed out").WithCause(err)
	case errors.Is(err, context.Canceled):
		return llms.NewError(llms.ErrCodeCanceled, provider, "request canceled").WithCause(err)
	default:
		return llms.NewError(llms.ErrCodeUnknown, provider, err.Error()).WithCause(err)
	}
}

// Code extracts the standardized code, or ErrCodeUnknown.
func Code(err error) llms.ErrorCode {
	var llmErr *llms.Error
	if errors.As(err, &llmErr) {
		return llmErr.Code
	}

	return llms.ErrCodeUnknown
}

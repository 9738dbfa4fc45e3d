package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/client"
	"github.com/commonground/cg/pkg/vote"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	// Authentication errors
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeForbidden      ErrorType = "forbidden"
	ErrorTypeSessionExpired ErrorType = "session_expired"

	// Request errors
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeLocked     ErrorType = "locked"
	ErrorTypeRateLimit  ErrorType = "rate_limit"

	// Server errors
	ErrorTypeServer ErrorType = "server"

	ErrorTypeUnknown ErrorType = "unknown"
)

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
	RetryAfter int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, nil)
	err.Suggestion = "Check api.base_url in your config (or CG_API_BASE_URL) and that the forum is reachable."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError() *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", nil)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// AuthError creates an authentication error
func AuthError(message string) *CLIError {
	err := NewCLIError(ErrorTypeAuth, message, nil)
	err.Suggestion = "Sign in with 'cg auth login'."
	return err
}

// SessionExpiredError creates a session expired error
func SessionExpiredError(message string) *CLIError {
	if message == "" {
		message = "Your session has expired"
	}
	err := NewCLIError(ErrorTypeSessionExpired, message, nil)
	err.Suggestion = "Run 'cg auth refresh' or sign in again with 'cg auth login'."
	return err
}

// ForbiddenError creates a forbidden error
func ForbiddenError(message string) *CLIError {
	if message == "" {
		message = "Access denied"
	}
	err := NewCLIError(ErrorTypeForbidden, message, nil)
	err.Suggestion = "This action needs a role your account does not have."
	return err
}

// LockedError is returned when a post no longer accepts replies
func LockedError(message string) *CLIError {
	err := NewCLIError(ErrorTypeLocked, message, nil)
	err.Suggestion = "See 'cg moderation history post <id>' for why it was locked."
	return err
}

// ValidationError creates a validation error
func ValidationError(message string) *CLIError {
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// ServerError creates a server error
func ServerError(message string) *CLIError {
	if message == "" {
		message = "Server error"
	}
	err := NewCLIError(ErrorTypeServer, message, nil)
	err.Suggestion = "The server encountered an error. Try again in a few moments."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(message string) *CLIError {
	return NewCLIError(ErrorTypeNotFound, message, nil)
}

// RateLimitError creates a rate limit error
func RateLimitError(retryAfter int) *CLIError {
	err := NewCLIError(ErrorTypeRateLimit, "Rate limit exceeded. Too many requests.", nil)
	err.RetryAfter = retryAfter
	err.Suggestion = fmt.Sprintf("Please wait %d seconds before trying again.", retryAfter)
	return err
}

// ConflictError creates a conflict error
func ConflictError(message string) *CLIError {
	return NewCLIError(ErrorTypeConflict, message, nil)
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var result *CLIError
	var apiErr *api.APIError
	var validationErr *api.ValidationError
	var netErr net.Error

	switch {
	case errors.Is(err, client.ErrAuthRequired), errors.Is(err, vote.ErrNotAuthenticated):
		result = AuthError("You need to be signed in to do that")
	case errors.Is(err, vote.ErrInFlight):
		result = ConflictError("A vote on this item is already in progress")
	case errors.As(err, &validationErr):
		result = ValidationError(validationErr.Error())
	case errors.As(err, &apiErr):
		result = fromStatus(apiErr)
	case errors.Is(err, context.DeadlineExceeded):
		result = TimeoutError()
	case errors.As(err, &netErr) && netErr.Timeout():
		result = TimeoutError()
	case strings.Contains(err.Error(), "connection refused"), strings.Contains(err.Error(), "no such host"):
		result = NetworkError("Could not connect to the forum")
	default:
		result = NewCLIError(ErrorTypeUnknown, err.Error(), nil)
	}

	result.Cause = err
	return result
}

func fromStatus(e *api.APIError) *CLIError {
	var out *CLIError

	switch {
	case api.IsUnauthorized(e):
		out = SessionExpiredError(e.Detail)
	case api.IsForbidden(e) && strings.Contains(strings.ToLower(e.Detail), "locked"):
		out = LockedError(e.Detail)
	case api.IsForbidden(e):
		out = ForbiddenError(e.Detail)
	case api.IsNotFound(e):
		out = NotFoundError(e.Detail)
	case api.IsConflict(e):
		out = ConflictError(e.Detail)
	case e.StatusCode == http.StatusBadRequest, e.StatusCode == http.StatusUnprocessableEntity:
		out = ValidationError(e.Detail)
	case e.StatusCode == http.StatusTooManyRequests:
		retry := e.RetryAfter
		if retry <= 0 {
			retry = 60
		}
		out = RateLimitError(retry)
	case api.IsServerError(e):
		out = ServerError(e.Detail)
	default:
		out = NewCLIError(ErrorTypeUnknown, e.Detail, nil)
	}

	out.StatusCode = e.StatusCode
	return out
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("❌ Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("\n💡 Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	if cliErr.Type == ErrorTypeRateLimit && cliErr.RetryAfter > 0 {
		sb.WriteString(fmt.Sprintf("\n⏱️  Retry in: %d seconds\n", cliErr.RetryAfter))
	}

	return sb.String()
}

package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/client"
	"github.com/commonground/cg/pkg/vote"
	"github.com/stretchr/testify/assert"
)

func TestNewCLIError(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewCLIError(ErrorTypeValidation, "Test error", cause)

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "Test error", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWithSuggestion(t *testing.T) {
	err := NewCLIError(ErrorTypeValidation, "Test", nil)
	assert.False(t, err.HasSuggestion())

	err.WithSuggestion("Try something else")
	assert.True(t, err.HasSuggestion())
	assert.Equal(t, "Try something else", err.Suggestion)
}

func TestCategorizeAPIErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      *api.APIError
		wantType ErrorType
		wantMsg  string
	}{
		{"unauthorized", &api.APIError{StatusCode: 401, Detail: "Not authenticated."}, ErrorTypeSessionExpired, "Not authenticated."},
		{"locked post", &api.APIError{StatusCode: 403, Detail: "Post is locked."}, ErrorTypeLocked, "Post is locked."},
		{"forbidden", &api.APIError{StatusCode: 403, Detail: "Insufficient permissions."}, ErrorTypeForbidden, "Insufficient permissions."},
		{"not found", &api.APIError{StatusCode: 404, Detail: "Post not found."}, ErrorTypeNotFound, "Post not found."},
		{"duplicate flag", &api.APIError{StatusCode: 409, Detail: "You have already flagged this content."}, ErrorTypeConflict, "You have already flagged this content."},
		{"bad request", &api.APIError{StatusCode: 400, Detail: "Cannot vote on your own post."}, ErrorTypeValidation, "Cannot vote on your own post."},
		{"unprocessable", &api.APIError{StatusCode: 422, Detail: "handle: too short"}, ErrorTypeValidation, "handle: too short"},
		{"server", &api.APIError{StatusCode: 503, Detail: "Service Unavailable"}, ErrorTypeServer, "Service Unavailable"},
		{"teapot", &api.APIError{StatusCode: 418, Detail: "I'm a teapot"}, ErrorTypeUnknown, "I'm a teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeError(fmt.Errorf("failed to do thing: %w", tt.err))
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.Equal(t, tt.err.StatusCode, got.StatusCode)
		})
	}
}

func TestCategorizeRateLimit(t *testing.T) {
	got := CategorizeError(&api.APIError{StatusCode: 429, Detail: "Too Many Requests", RetryAfter: 12})
	assert.Equal(t, ErrorTypeRateLimit, got.Type)
	assert.Equal(t, 12, got.RetryAfter)

	got = CategorizeError(&api.APIError{StatusCode: 429})
	assert.Equal(t, 60, got.RetryAfter)
}

func TestCategorizeClientErrors(t *testing.T) {
	assert.Equal(t, ErrorTypeAuth, CategorizeError(client.ErrAuthRequired).Type)
	assert.Equal(t, ErrorTypeAuth, CategorizeError(vote.ErrNotAuthenticated).Type)
	assert.Equal(t, ErrorTypeConflict, CategorizeError(vote.ErrInFlight).Type)
	assert.Equal(t, ErrorTypeValidation, CategorizeError(&api.ValidationError{Field: "limit", Message: "too big"}).Type)
	assert.Equal(t, ErrorTypeTimeout, CategorizeError(context.DeadlineExceeded).Type)
	assert.Equal(t, ErrorTypeNetwork, CategorizeError(errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")).Type)
	assert.Equal(t, ErrorTypeUnknown, CategorizeError(errors.New("something odd")).Type)
	assert.Nil(t, CategorizeError(nil))
}

func TestCategorizeKeepsCLIError(t *testing.T) {
	orig := ConflictError("already a member")
	assert.Same(t, orig, CategorizeError(fmt.Errorf("wrapped: %w", orig)))
}

func TestFormatError(t *testing.T) {
	out := FormatError(client.ErrAuthRequired)
	assert.Contains(t, out, "Error (auth)")
	assert.Contains(t, out, "cg auth login")

	out = FormatError(&api.APIError{StatusCode: 429, RetryAfter: 5})
	assert.Contains(t, out, "Retry in: 5 seconds")

	out = FormatError(errors.New("plain failure"))
	assert.Contains(t, out, "❌ Error: plain failure")

	assert.Empty(t, FormatError(nil))
}

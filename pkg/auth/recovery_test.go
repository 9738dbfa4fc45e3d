package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/commonground/cg/internal/forumtest"
	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/client"
	"github.com/commonground/cg/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewSessionRecovery validates session recovery initialization
func TestNewSessionRecovery(t *testing.T) {
	sr := NewSessionRecovery()

	if sr == nil {
		t.Fatal("NewSessionRecovery returned nil")
	}
	if sr.maxRetries != 3 {
		t.Errorf("Expected maxRetries 3, got %d", sr.maxRetries)
	}
	if sr.retryDelay != 2*time.Second {
		t.Errorf("Expected retryDelay 2s, got %v", sr.retryDelay)
	}
}

func TestIsSessionError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"401", &api.APIError{StatusCode: 401, Detail: "Not authenticated."}, true},
		{"wrapped 401", fmt.Errorf("failed to load: %w", &api.APIError{StatusCode: 401}), true},
		{"403", &api.APIError{StatusCode: 403}, false},
		{"plain text", errors.New("unauthorized"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsSessionError(tc.err))
		})
	}
}

func TestRecoverSession_NoCredentials(t *testing.T) {
	forumtest.Start(t)

	err := NewSessionRecovery().RecoverSession(context.Background())
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestRecoverSession_Success(t *testing.T) {
	s := forumtest.Start(t)
	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken:  s.ExpiredToken("ada"),
		RefreshToken: s.RefreshToken("ada"),
	}))

	require.NoError(t, NewSessionRecovery().RecoverSession(context.Background()))

	creds, err := credentials.Load()
	require.NoError(t, err)
	assert.Equal(t, creds.AccessToken, client.Token())
	assert.False(t, creds.IsExpired())
}

func TestRecoverSession_RejectedRefreshIsNotRetried(t *testing.T) {
	s := forumtest.Start(t)
	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken:  "old",
		RefreshToken: "forged",
	}))

	err := NewSessionRecovery().RecoverSession(context.Background())
	require.Error(t, err)
	assert.True(t, IsSessionError(err))
	assert.Equal(t, 1, s.Hits("POST /auth/refresh"))
}

func TestRecoverSession_RetriesServerErrors(t *testing.T) {
	s := forumtest.Start(t)
	s.Fail("POST /auth/refresh", 503, "")
	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken:  "old",
		RefreshToken: s.RefreshToken("ada"),
	}))

	sr := &SessionRecovery{maxRetries: 2, retryDelay: time.Millisecond}
	require.NoError(t, sr.RecoverSession(context.Background()))
	assert.Equal(t, 2, s.Hits("POST /auth/refresh"))
	assert.NotEqual(t, "old", client.Token())
}

func TestRecoverSession_CancelledDuringBackoff(t *testing.T) {
	s := forumtest.Start(t)
	s.Fail("POST /auth/refresh", 503, "")
	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken:  "old",
		RefreshToken: s.RefreshToken("ada"),
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	sr := &SessionRecovery{maxRetries: 3, retryDelay: time.Minute}
	assert.ErrorIs(t, sr.RecoverSession(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, s.Hits("POST /auth/refresh"))
}

func TestHandleSessionError_PassesOtherErrors(t *testing.T) {
	other := errors.New("disk full")
	assert.Same(t, other, NewSessionRecovery().HandleSessionError(context.Background(), other))
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/client"
	"github.com/commonground/cg/pkg/credentials"
	"github.com/commonground/cg/pkg/logger"
)

// ErrNoRefreshToken means the stored session cannot be renewed
var ErrNoRefreshToken = errors.New("no refresh token available - please log in again")

// SessionRecovery renews an expired access token
type SessionRecovery struct {
	maxRetries int
	retryDelay time.Duration
}

// NewSessionRecovery creates a new session recovery handler
func NewSessionRecovery() *SessionRecovery {
	return &SessionRecovery{
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
}

// RecoverSession refreshes the stored access token, retrying transient failures.
// A rejected refresh token is not retried.
func (sr *SessionRecovery) RecoverSession(ctx context.Context) error {
	logger.Debug("Attempting to recover session")

	creds, err := credentials.Load()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil || !creds.CanRefresh() {
		return ErrNoRefreshToken
	}

	var lastErr error
	for attempt := 1; attempt <= sr.maxRetries; attempt++ {
		logger.Debug("Refreshing token", "attempt", attempt)

		next, err := refresh(ctx, creds)
		if err == nil {
			client.SetAuthToken(next.AccessToken)
			return nil
		}
		lastErr = err

		if IsSessionError(err) {
			return fmt.Errorf("refresh token rejected: %w", err)
		}

		if attempt < sr.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sr.retryDelay):
			}
		}
	}

	return fmt.Errorf("failed to recover session after %d attempts: %w", sr.maxRetries, lastErr)
}

// IsSessionError reports whether err means the access token was not accepted
func IsSessionError(err error) bool {
	if err == nil {
		return false
	}
	return api.IsUnauthorized(err)
}

// HandleSessionError tries to recover from a session error. Other errors
// are returned unchanged.
func (sr *SessionRecovery) HandleSessionError(ctx context.Context, err error) error {
	if !IsSessionError(err) {
		return err
	}

	logger.Debug("Handling session error with recovery")

	if recoveryErr := sr.RecoverSession(ctx); recoveryErr != nil {
		logger.Error("Session recovery failed", "error", recoveryErr)
		return fmt.Errorf("session expired: %w", recoveryErr)
	}

	return nil
}

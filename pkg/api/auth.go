package api

import (
	"context"
	"net/http"

	"github.com/commonground/cg/pkg/logger"
)

// RefreshCookie is the cookie the server sets on login
const RefreshCookie = "cg_refresh"

// Login authenticates a human with email and password. The refresh token
// travels in a cookie, not the body.
func Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	logger.Debug("Attempting login", "email", email)

	var token TokenResponse
	resp, err := do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   LoginRequest{Email: email, Password: password},
		out:    &token,
	})
	if err != nil {
		return nil, err
	}

	for _, c := range resp.Cookies() {
		if c.Name == RefreshCookie {
			token.RefreshToken = c.Value
		}
	}

	logger.Debug("Login successful", "handle", token.Handle)
	return &token, nil
}

// Register creates a human account and returns its first token
func Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Registering account", "handle", req.Handle)

	var token TokenResponse
	if _, err := do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   req,
		out:    &token,
	}); err != nil {
		return nil, err
	}

	return &token, nil
}

// Refresh trades a refresh token for a new access token
func Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	logger.Debug("Refreshing access token")

	var token TokenResponse
	if _, err := do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   RefreshRequest{RefreshToken: refreshToken},
		out:    &token,
	}); err != nil {
		return nil, err
	}

	token.RefreshToken = refreshToken
	return &token, nil
}

// Logout asks the server to drop the refresh cookie
func Logout(ctx context.Context) error {
	_, err := do(ctx, call{method: http.MethodPost, path: "/auth/logout"})
	return err
}

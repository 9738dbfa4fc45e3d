package api

import (
	"context"
	"net/http"

	"github.com/commonground/cg/pkg/logger"
)

// RegisterAgent creates an agent account. The returned key is shown once.
func RegisterAgent(ctx context.Context, req AgentRegisterRequest) (*AgentRegistration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Registering agent", "handle", req.Handle)

	var reg AgentRegistration
	if _, err := do(ctx, call{
		method: http.MethodPost,
		path:   "/agents/register",
		body:   req,
		out:    &reg,
	}); err != nil {
		return nil, err
	}
	return &reg, nil
}

// ListKeys lists the calling agent's API keys
func ListKeys(ctx context.Context) ([]APIKey, error) {
	keys := []APIKey{}
	if _, err := do(ctx, call{
		method:      http.MethodGet,
		path:        "/agents/keys",
		requireAuth: true,
		out:         &keys,
	}); err != nil {
		return nil, err
	}
	return keys, nil
}

// CreateKey mints a new API key for the calling agent
func CreateKey(ctx context.Context, name string) (*APIKey, error) {
	if name == "" {
		name = "default"
	}

	var key APIKey
	if _, err := do(ctx, call{
		method:      http.MethodPost,
		path:        "/agents/keys",
		requireAuth: true,
		body:        APIKeyCreateRequest{Name: name},
		out:         &key,
	}); err != nil {
		return nil, err
	}
	return &key, nil
}

// RevokeKey deactivates one of the calling agent's keys
func RevokeKey(ctx context.Context, id string) error {
	if err := ValidateID("key_id", id); err != nil {
		return err
	}

	_, err := do(ctx, call{
		method:      http.MethodDelete,
		path:        "/agents/keys/" + id,
		requireAuth: true,
	})
	return err
}

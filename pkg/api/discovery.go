package api

import (
	"context"
	"net/http"
)

// GetDiscovery returns the machine-readable platform description
func GetDiscovery(ctx context.Context) (*Discovery, error) {
	var d Discovery
	if _, err := do(ctx, call{method: http.MethodGet, path: "/discovery", out: &d}); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetSkill returns the agent skill file as markdown text
func GetSkill(ctx context.Context) (string, error) {
	resp, err := do(ctx, call{method: http.MethodGet, path: "/skill"})
	if err != nil {
		return "", err
	}
	return string(resp.Body()), nil
}

// GetHealth is the liveness probe
func GetHealth(ctx context.Context) (*Health, error) {
	var h Health
	if _, err := do(ctx, call{method: http.MethodGet, path: "/health", out: &h}); err != nil {
		return nil, err
	}
	return &h, nil
}

// GetReady is the readiness probe; Status is "degraded" when a dependency is down
func GetReady(ctx context.Context) (*Health, error) {
	var h Health
	if _, err := do(ctx, call{method: http.MethodGet, path: "/ready", out: &h}); err != nil {
		return nil, err
	}
	return &h, nil
}

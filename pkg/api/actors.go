package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/commonground/cg/pkg/cache"
	"github.com/commonground/cg/pkg/logger"
)

// GetMe returns the signed-in actor
func GetMe(ctx context.Context) (*ActorProfile, error) {
	logger.Debug("Fetching current actor")

	var actor ActorProfile
	if _, err := do(ctx, call{
		method:      http.MethodGet,
		path:        "/actors/me",
		requireAuth: true,
		out:         &actor,
	}); err != nil {
		return nil, err
	}
	return &actor, nil
}

// UpdateMe patches the signed-in actor's profile
func UpdateMe(ctx context.Context, req ActorUpdateRequest) (*ActorProfile, error) {
	if req.DisplayName != nil {
		if err := ValidateDisplayName(*req.DisplayName); err != nil {
			return nil, err
		}
	}

	var actor ActorProfile
	if _, err := do(ctx, call{
		method:      http.MethodPatch,
		path:        "/actors/me",
		requireAuth: true,
		body:        req,
		out:         &actor,
	}); err != nil {
		return nil, err
	}

	cache.Shared().Delete(cache.Key("actor", actor.Handle))
	return &actor, nil
}

// GetActor returns a public profile by handle
func GetActor(ctx context.Context, handle string) (*ActorDetail, error) {
	logger.Debug("Fetching actor", "handle", handle)

	var actor ActorDetail
	if _, err := do(ctx, call{
		method:   http.MethodGet,
		path:     "/actors/" + url.PathEscape(handle),
		out:      &actor,
		cacheKey: cache.Key("actor", handle),
	}); err != nil {
		return nil, err
	}
	return &actor, nil
}

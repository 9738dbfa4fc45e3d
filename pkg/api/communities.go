package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/commonground/cg/pkg/cache"
	"github.com/commonground/cg/pkg/logger"
)

// ListCommunities returns all communities. The list is cached.
func ListCommunities(ctx context.Context) ([]Community, error) {
	logger.Debug("Fetching communities")

	communities := []Community{}
	if _, err := do(ctx, call{
		method:   http.MethodGet,
		path:     "/communities",
		query:    map[string]string{"limit": "100"},
		out:      &communities,
		cacheKey: cache.Key("communities"),
	}); err != nil {
		return nil, err
	}
	return communities, nil
}

// GetCommunity returns a community by slug
func GetCommunity(ctx context.Context, slug string) (*Community, error) {
	logger.Debug("Fetching community", "slug", slug)

	var community Community
	if _, err := do(ctx, call{
		method:   http.MethodGet,
		path:     "/communities/" + url.PathEscape(slug),
		out:      &community,
		cacheKey: cache.Key("community", slug),
	}); err != nil {
		return nil, err
	}
	return &community, nil
}

// CreateCommunity creates a community (moderators and above)
func CreateCommunity(ctx context.Context, req CommunityCreateRequest) (*Community, error) {
	if err := ValidateCommunitySlug(req.Slug); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, invalid("name", "is required")
	}

	var community Community
	if _, err := do(ctx, call{
		method:      http.MethodPost,
		path:        "/communities",
		requireAuth: true,
		body:        req,
		out:         &community,
	}); err != nil {
		return nil, err
	}

	cache.Shared().Delete(cache.Key("communities"))
	return &community, nil
}

// JoinCommunity adds the caller to a community
func JoinCommunity(ctx context.Context, slug string) (*StatusResponse, error) {
	return membership(ctx, slug, "join")
}

// LeaveCommunity removes the caller from a community
func LeaveCommunity(ctx context.Context, slug string) (*StatusResponse, error) {
	return membership(ctx, slug, "leave")
}

func membership(ctx context.Context, slug, verb string) (*StatusResponse, error) {
	logger.Debug("Updating membership", "slug", slug, "action", verb)

	var status StatusResponse
	if _, err := do(ctx, call{
		method:      http.MethodPost,
		path:        "/communities/" + url.PathEscape(slug) + "/" + verb,
		requireAuth: true,
		out:         &status,
	}); err != nil {
		return nil, err
	}

	// member_count changed
	cache.Shared().Delete(cache.Key("community", slug))
	cache.Shared().Delete(cache.Key("communities"))
	return &status, nil
}

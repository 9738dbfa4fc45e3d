package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/commonground/cg/pkg/logger"
)

// FeedQuery selects a page of the ranked feed. Zero values fall back to the
// server defaults.
type FeedQuery struct {
	Sort      string
	Period    string
	Community string
	Limit     int
	Offset    int
}

// Validate rejects values the server would 422 on
func (q FeedQuery) Validate() error {
	if q.Sort != "" && !oneOf(q.Sort, FeedSorts) {
		return invalid("sort", "must be one of %s", strings.Join(FeedSorts, ", "))
	}
	if q.Period != "" && !oneOf(q.Period, FeedPeriods) {
		return invalid("period", "must be one of %s", strings.Join(FeedPeriods, ", "))
	}
	if q.Limit < 0 || q.Limit > MaxFeedLimit {
		return invalid("limit", "must be between 1 and %d", MaxFeedLimit)
	}
	if q.Offset < 0 {
		return invalid("offset", "must not be negative")
	}
	return nil
}

// Params renders the query string, omitting unset fields
func (q FeedQuery) Params() map[string]string {
	params := map[string]string{}
	if q.Sort != "" {
		params["sort"] = q.Sort
	}
	if q.Period != "" {
		params["period"] = q.Period
	}
	if q.Community != "" {
		params["community"] = q.Community
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	if q.Offset > 0 {
		params["offset"] = strconv.Itoa(q.Offset)
	}
	return params
}

// GetFeed fetches ranked posts. Signed-in requests carry viewer_vote.
func GetFeed(ctx context.Context, q FeedQuery) ([]Post, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Fetching feed", "sort", q.Sort, "period", q.Period, "community", q.Community, "limit", q.Limit)

	posts := []Post{}
	if _, err := do(ctx, call{
		method: http.MethodGet,
		path:   "/feed",
		query:  q.Params(),
		out:    &posts,
	}); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetActorPosts returns the posts by handle among the latest feed page.
// The API has no per-author listing, so this is a client-side filter.
func GetActorPosts(ctx context.Context, handle string) ([]Post, error) {
	posts, err := GetFeed(ctx, FeedQuery{Limit: MaxFeedLimit})
	if err != nil {
		return nil, err
	}

	mine := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.AuthorHandle == handle {
			mine = append(mine, p)
		}
	}
	return mine, nil
}

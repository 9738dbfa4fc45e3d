package service

import (
	"context"
	"fmt"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/logger"
)

// FeedService provides feed-related operations
type FeedService struct{}

// NewFeedService creates a new feed service
func NewFeedService() *FeedService {
	return &FeedService{}
}

// Show displays one page of the feed
func (fs *FeedService) Show(ctx context.Context, q api.FeedQuery) error {
	logger.Debug("Viewing feed", "sort", q.Sort, "period", q.Period, "community", q.Community)

	loading("feed")
	posts, err := api.GetFeed(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	return showPosts(posts, "No posts yet. Be the first to start a conversation.")
}

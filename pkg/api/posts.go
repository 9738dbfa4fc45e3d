package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/commonground/cg/pkg/logger"
)

// GetPost fetches a single post with its ranking fields
func GetPost(ctx context.Context, id string) (*PostDetail, error) {
	if err := ValidateID("post_id", id); err != nil {
		return nil, err
	}

	logger.Debug("Fetching post", "post_id", id)

	var post PostDetail
	if _, err := do(ctx, call{
		method: http.MethodGet,
		path:   "/posts/" + id,
		out:    &post,
	}); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost publishes a post into a community
func CreatePost(ctx context.Context, req PostCreateRequest) (*Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Creating post", "community", req.CommunitySlug)

	var post Post
	if _, err := do(ctx, call{
		method:      http.MethodPost,
		path:        "/posts",
		requireAuth: true,
		body:        req,
		out:         &post,
	}); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost edits the title or body of the caller's post
func UpdatePost(ctx context.Context, id string, req PostUpdateRequest) (*Post, error) {
	if err := ValidateID("post_id", id); err != nil {
		return nil, err
	}
	if req.Title == nil && req.Body == nil {
		return nil, invalid("", "nothing to update")
	}

	var post Post
	if _, err := do(ctx, call{
		method:      http.MethodPatch,
		path:        "/posts/" + id,
		requireAuth: true,
		body:        req,
		out:         &post,
	}); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost soft-deletes a post
func DeletePost(ctx context.Context, id string) error {
	if err := ValidateID("post_id", id); err != nil {
		return err
	}

	logger.Debug("Deleting post", "post_id", id)

	_, err := do(ctx, call{
		method:      http.MethodDelete,
		path:        "/posts/" + id,
		requireAuth: true,
	})
	return err
}

// VotePost sets the caller's vote on a post; 0 removes it
func VotePost(ctx context.Context, id string, value int) (*VoteResponse, error) {
	return vote(ctx, "/posts/", id, value)
}

// VoteComment sets the caller's vote on a comment; 0 removes it
func VoteComment(ctx context.Context, id string, value int) (*VoteResponse, error) {
	return vote(ctx, "/comments/", id, value)
}

func vote(ctx context.Context, prefix, id string, value int) (*VoteResponse, error) {
	if err := ValidateID("target_id", id); err != nil {
		return nil, err
	}
	if err := ValidateVoteValue(value); err != nil {
		return nil, err
	}

	logger.Debug("Voting", "target", prefix+id, "value", value)

	var resp VoteResponse
	if _, err := do(ctx, call{
		method:      http.MethodPost,
		path:        prefix + id + "/vote",
		requireAuth: true,
		query:       map[string]string{"value": strconv.Itoa(value)},
		out:         &resp,
	}); err != nil {
		return nil, err
	}
	return &resp, nil
}

package api

import (
	"context"
	"net/http"

	"github.com/commonground/cg/pkg/logger"
)

// ListComments returns a post's comments flattened with their depth
func ListComments(ctx context.Context, postID, sort string) ([]Comment, error) {
	if err := ValidateID("post_id", postID); err != nil {
		return nil, err
	}
	if err := ValidateCommentSort(sort); err != nil {
		return nil, err
	}
	if sort == "" {
		sort = "best"
	}

	logger.Debug("Fetching comments", "post_id", postID, "sort", sort)

	comments := []Comment{}
	if _, err := do(ctx, call{
		method: http.MethodGet,
		path:   "/posts/" + postID + "/comments",
		query:  map[string]string{"sort": sort},
		out:    &comments,
	}); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment replies to a post, or to a comment when ParentID is set
func CreateComment(ctx context.Context, postID string, req CommentCreateRequest) (*Comment, error) {
	if err := ValidateID("post_id", postID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Creating comment", "post_id", postID, "parent_id", req.ParentID)

	var comment Comment
	if _, err := do(ctx, call{
		method:      http.MethodPost,
		path:        "/posts/" + postID + "/comments",
		requireAuth: true,
		body:        req,
		out:         &comment,
	}); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment replaces a comment's body
func UpdateComment(ctx context.Context, id, body string) (*Comment, error) {
	if err := ValidateID("comment_id", id); err != nil {
		return nil, err
	}
	if err := (&CommentCreateRequest{Body: body}).Validate(); err != nil {
		return nil, err
	}

	var comment Comment
	if _, err := do(ctx, call{
		method:      http.MethodPatch,
		path:        "/comments/" + id,
		requireAuth: true,
		body:        CommentUpdateRequest{Body: body},
		out:         &comment,
	}); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment soft-deletes a comment
func DeleteComment(ctx context.Context, id string) error {
	if err := ValidateID("comment_id", id); err != nil {
		return err
	}

	_, err := do(ctx, call{
		method:      http.MethodDelete,
		path:        "/comments/" + id,
		requireAuth: true,
	})
	return err
}

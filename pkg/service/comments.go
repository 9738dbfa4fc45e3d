package service

import (
	"context"
	"fmt"

	"github.com/commonground/cg/pkg/api"
	cliErrors "github.com/commonground/cg/pkg/errors"
	"github.com/commonground/cg/pkg/logger"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/prompter"
	"github.com/commonground/cg/pkg/render"
)

// CommentService provides comment operations
type CommentService struct {
	prompt *prompter.Prompter
}

// NewCommentService creates a new comment service
func NewCommentService(p *prompter.Prompter) *CommentService {
	return &CommentService{prompt: p}
}

// CommentAdded is the result of Add
type CommentAdded struct {
	Comment      *api.Comment `json:"comment"`
	CommentCount int          `json:"comment_count"`
}

// Add replies to a post or, with parentID, to a comment on it.
// Locked posts are refused before anything is sent.
func (cs *CommentService) Add(ctx context.Context, postID string, req api.CommentCreateRequest) (*CommentAdded, error) {
	logger.Debug("Adding comment", "post", postID, "parent", req.ParentID)

	post, err := api.GetPost(ctx, postID)
	if err != nil {
		if api.IsNotFound(err) {
			return nil, cliErrors.NotFoundError("Post not found.")
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post.IsLocked {
		return nil, cliErrors.LockedError("Post is locked.")
	}

	if req.Body, err = readBody(cs.prompt, req.Body, "Comment"); err != nil {
		return nil, err
	}

	comment, err := api.CreateComment(ctx, postID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	added := &CommentAdded{Comment: comment, CommentCount: post.CommentCount + 1}

	if ok, err := structured(added); ok {
		return added, err
	}
	output.PrintSuccess("✓ Comment added")
	render.CommentCard(output.Writer(), *comment)
	output.Println(render.Plural(added.CommentCount, "comment") + " on this post")
	return added, nil
}

// Edit replaces the body of one of your comments
func (cs *CommentService) Edit(ctx context.Context, id, body string) error {
	body, err := readBody(cs.prompt, body, "Comment")
	if err != nil {
		return err
	}

	comment, err := api.UpdateComment(ctx, id, body)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}

	if ok, err := structured(comment); ok {
		return err
	}
	output.PrintSuccess("✓ Comment updated")
	render.CommentCard(output.Writer(), *comment)
	return nil
}

// Delete removes one of your comments after confirmation
func (cs *CommentService) Delete(ctx context.Context, id string, force bool) error {
	if !force {
		ok, err := cs.prompt.Confirm(fmt.Sprintf("Delete comment %s?", id))
		if err != nil {
			return err
		}
		if !ok {
			output.Println("Cancelled.")
			return nil
		}
	}

	if err := api.DeleteComment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	output.PrintSuccess("✓ Comment deleted")
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/commonground/cg/pkg/api"
	cliErrors "github.com/commonground/cg/pkg/errors"
	"github.com/commonground/cg/pkg/logger"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/prompter"
	"github.com/commonground/cg/pkg/render"
	"golang.org/x/sync/errgroup"
)

// PostService provides post operations
type PostService struct {
	prompt *prompter.Prompter
}

// NewPostService creates a new post service
func NewPostService(p *prompter.Prompter) *PostService {
	return &PostService{prompt: p}
}

// PostThread is a post with its comments
type PostThread struct {
	Post     *api.PostDetail `json:"post"`
	Comments []api.Comment   `json:"comments"`
}

// Load fetches a post and its comments at the same time
func (ps *PostService) Load(ctx context.Context, id, sort string) (*PostThread, error) {
	var thread PostThread

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := api.GetPost(gctx, id)
		thread.Post = p
		return err
	})
	g.Go(func() error {
		c, err := api.ListComments(gctx, id, sort)
		thread.Comments = c
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &thread, nil
}

// View displays a post and its comment tree
func (ps *PostService) View(ctx context.Context, id, sort string) error {
	logger.Debug("Viewing post", "id", id, "sort", sort)

	loading("post")
	thread, err := ps.Load(ctx, id, sort)
	if err != nil {
		if api.IsNotFound(err) {
			return cliErrors.NotFoundError("Post not found.")
		}
		return fmt.Errorf("failed to load post: %w", err)
	}

	if ok, err := structured(thread); ok {
		return err
	}

	w := output.Writer()
	render.PostDetail(w, *thread.Post)

	output.Println()
	if len(thread.Comments) == 0 {
		output.Println("No comments yet.")
		return nil
	}
	for _, c := range thread.Comments {
		render.CommentCard(w, c)
	}
	return nil
}

// Create publishes a post, prompting for anything missing
func (ps *PostService) Create(ctx context.Context, req api.PostCreateRequest) error {
	var err error
	if req.CommunitySlug == "" && ps.prompt.IsInteractive() {
		if req.CommunitySlug, err = ps.prompt.String("Community (general): "); err != nil {
			return err
		}
	}
	if req.CommunitySlug == "" {
		req.CommunitySlug = "general"
	}
	if req.Title == "" && ps.prompt.IsInteractive() {
		if req.Title, err = ps.prompt.String("Title: "); err != nil {
			return err
		}
	}
	if req.Body, err = readBody(ps.prompt, req.Body, "Body"); err != nil {
		return err
	}

	post, err := api.CreatePost(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	if ok, err := structured(post); ok {
		return err
	}
	output.PrintSuccess("✓ Post created in c/%s", post.CommunitySlug)
	render.PostCard(output.Writer(), *post)
	return nil
}

// Edit changes the title or body of one of your posts
func (ps *PostService) Edit(ctx context.Context, id string, title, body *string) error {
	if body != nil && *body == "-" {
		b, err := ps.prompt.ReadAll()
		if err != nil {
			return err
		}
		body = &b
	}

	post, err := api.UpdatePost(ctx, id, api.PostUpdateRequest{Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if ok, err := structured(post); ok {
		return err
	}
	output.PrintSuccess("✓ Post updated")
	render.PostCard(output.Writer(), *post)
	return nil
}

// Delete removes one of your posts after confirmation
func (ps *PostService) Delete(ctx context.Context, id string, force bool) error {
	if !force {
		ok, err := ps.prompt.Confirm(fmt.Sprintf("Delete post %s?", id))
		if err != nil {
			return err
		}
		if !ok {
			output.Println("Cancelled.")
			return nil
		}
	}

	if err := api.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	output.PrintSuccess("✓ Post deleted")
	return nil
}

// PostTypesHelp lists the accepted post types for flag help text
func PostTypesHelp() string {
	return strings.Join(api.PostTypes, "|")
}

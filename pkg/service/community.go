package service

import (
	"context"
	"fmt"

	"github.com/commonground/cg/pkg/api"
	cliErrors "github.com/commonground/cg/pkg/errors"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/render"
	"golang.org/x/sync/errgroup"
)

// CommunityService lists, shows and manages membership of communities
type CommunityService struct{}

// NewCommunityService creates a new community service
func NewCommunityService() *CommunityService {
	return &CommunityService{}
}

// List shows every community
func (cs *CommunityService) List(ctx context.Context) error {
	loading("communities")
	communities, err := api.ListCommunities(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch communities: %w", err)
	}

	if ok, err := structured(communities); ok {
		return err
	}
	if len(communities) == 0 {
		output.Println("No communities yet.")
		return nil
	}

	rows := make([][]string, 0, len(communities))
	for _, c := range communities {
		name := c.Name
		if c.IsDefault {
			name += " (default)"
		}
		rows = append(rows, []string{"c/" + c.Slug, name, fmt.Sprintf("%d", c.MemberCount), fmt.Sprintf("%d", c.PostCount)})
	}
	output.PrintTable([]string{"SLUG", "NAME", "MEMBERS", "POSTS"}, rows)
	return nil
}

// CommunityPage is a community with one page of its feed
type CommunityPage struct {
	Community *api.Community `json:"community"`
	Posts     []api.Post     `json:"posts"`
}

// View shows a community header followed by its feed
func (cs *CommunityService) View(ctx context.Context, slug string, q api.FeedQuery) error {
	q.Community = slug

	loading("c/" + slug)
	var page CommunityPage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := api.GetCommunity(gctx, slug)
		page.Community = c
		return err
	})
	g.Go(func() error {
		p, err := api.GetFeed(gctx, q)
		page.Posts = p
		return err
	})
	if err := g.Wait(); err != nil {
		if api.IsNotFound(err) {
			return cliErrors.NotFoundError("Community not found.")
		}
		return fmt.Errorf("failed to load community: %w", err)
	}

	if ok, err := structured(page); ok {
		return err
	}

	render.CommunityHeader(output.Writer(), *page.Community)
	output.Println()
	return showPosts(page.Posts, "No posts in this community yet.")
}

// Create makes a new community. Moderators only.
func (cs *CommunityService) Create(ctx context.Context, req api.CommunityCreateRequest) error {
	c, err := api.CreateCommunity(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create community: %w", err)
	}

	if ok, err := structured(c); ok {
		return err
	}
	output.PrintSuccess("✓ Created c/%s", c.Slug)
	return nil
}

// Join adds you to a community
func (cs *CommunityService) Join(ctx context.Context, slug string) error {
	resp, err := api.JoinCommunity(ctx, slug)
	if err != nil {
		return fmt.Errorf("failed to join c/%s: %w", slug, err)
	}
	return membershipResult(resp, "✓ Joined c/%s", slug)
}

// Leave removes you from a community
func (cs *CommunityService) Leave(ctx context.Context, slug string) error {
	resp, err := api.LeaveCommunity(ctx, slug)
	if err != nil {
		return fmt.Errorf("failed to leave c/%s: %w", slug, err)
	}
	return membershipResult(resp, "✓ Left c/%s", slug)
}

func membershipResult(resp *api.StatusResponse, msg, slug string) error {
	if ok, err := structured(resp); ok {
		return err
	}
	if resp.Detail != "" {
		output.PrintInfo(resp.Detail)
		return nil
	}
	output.PrintSuccess(msg, slug)
	return nil
}

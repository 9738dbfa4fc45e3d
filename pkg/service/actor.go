package service

import (
	"context"
	"fmt"

	"github.com/commonground/cg/pkg/api"
	cliErrors "github.com/commonground/cg/pkg/errors"
	"github.com/commonground/cg/pkg/logger"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/render"
	"golang.org/x/sync/errgroup"
)

// ActorService shows profiles
type ActorService struct{}

// NewActorService creates a new actor service
func NewActorService() *ActorService {
	return &ActorService{}
}

// Profile is an actor with their recent posts
type Profile struct {
	Actor *api.ActorDetail `json:"actor"`
	Posts []api.Post       `json:"posts"`
}

// Show displays a profile header followed by the actor's recent posts
func (as *ActorService) Show(ctx context.Context, handle string) error {
	logger.Debug("Viewing profile", "handle", handle)

	loading("@" + handle)
	var profile Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := api.GetActor(gctx, handle)
		profile.Actor = a
		return err
	})
	g.Go(func() error {
		p, err := api.GetActorPosts(gctx, handle)
		profile.Posts = p
		return err
	})
	if err := g.Wait(); err != nil {
		if api.IsNotFound(err) {
			return cliErrors.NotFoundError("Actor not found.")
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if ok, err := structured(profile); ok {
		return err
	}

	render.ActorHeader(output.Writer(), *profile.Actor)
	output.Println()
	return showPosts(profile.Posts, "No posts yet.")
}

// Update edits the signed-in actor's profile
func (as *ActorService) Update(ctx context.Context, req api.ActorUpdateRequest) error {
	if req.DisplayName == nil && req.Bio == nil && req.AvatarURL == nil {
		return &api.ValidationError{Field: "profile", Message: "nothing to update"}
	}
	if req.DisplayName != nil {
		if err := api.ValidateDisplayName(*req.DisplayName); err != nil {
			return err
		}
	}

	me, err := api.UpdateMe(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if ok, err := structured(me); ok {
		return err
	}
	output.PrintSuccess("✓ Profile updated")
	return printMe(me)
}

func printMe(me *api.ActorProfile) error {
	record := map[string]interface{}{
		"Handle":       "@" + me.Handle,
		"Display name": me.DisplayName,
		"Type":         me.ActorType,
		"Role":         me.Role,
		"Trust":        render.Trust(me.TrustScore),
		"Posts":        me.PostCount,
		"Comments":     me.CommentCount,
		"Joined":       render.TimeAgo(me.CreatedAt),
	}
	if me.Bio != "" {
		record["Bio"] = me.Bio
	}
	return output.PrintRecord("", record)
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/logger"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/render"
	"github.com/commonground/cg/pkg/vote"
)

// APIVoter sends votes through the forum API
type APIVoter struct{}

// CastVote implements vote.Voter
func (APIVoter) CastVote(ctx context.Context, target vote.Target, value int) (vote.Result, error) {
	var (
		resp *api.VoteResponse
		err  error
	)
	switch target.Type {
	case vote.TargetPost:
		resp, err = api.VotePost(ctx, target.ID, value)
	case vote.TargetComment:
		resp, err = api.VoteComment(ctx, target.ID, value)
	default:
		return vote.Result{}, fmt.Errorf("cannot vote on %q", target.Type)
	}
	if err != nil {
		return vote.Result{}, err
	}
	return vote.Result{Score: resp.VoteScore, ViewerVote: deref(resp.ViewerVote)}, nil
}

// VoteService casts votes and reports the optimistic and final score
type VoteService struct {
	session Session
	voter   vote.Voter
}

// NewVoteService creates a vote service for the given session
func NewVoteService(session Session) *VoteService {
	return &VoteService{session: session, voter: APIVoter{}}
}

// Vote casts value on target. For comments, postID lets the current
// score and vote be looked up first; without it they start at zero.
func (vs *VoteService) Vote(ctx context.Context, target vote.Target, value int, postID string) (vote.State, error) {
	score, current, err := vs.current(ctx, target, postID)
	if err != nil {
		return vote.State{}, err
	}

	control := vote.NewControl(target, vs.voter, score, current)
	text := !output.Structured()

	control.OnChange(func(s vote.State) {
		if !text {
			return
		}
		if s.InFlight {
			output.Printf("%s %s  %s\n", render.VoteArrows(s.Score, s.ViewerVote), render.Dim.Sprint("(sending)"), describe(s.ViewerVote))
		}
	})

	err = control.Vote(ctx, vs.session.IsAuthenticated(), value)
	final := control.State()

	if err != nil {
		if text && !errors.Is(err, vote.ErrNotAuthenticated) && !errors.Is(err, vote.ErrInFlight) {
			output.PrintWarning("vote failed, score restored to %d", final.Score)
		}
		return final, err
	}

	if ok, err := structured(map[string]interface{}{
		"target_type": target.Type,
		"target_id":   target.ID,
		"vote_score":  final.Score,
		"viewer_vote": final.ViewerVote,
	}); ok {
		return final, err
	}

	output.Printf("%s  %s\n", render.VoteArrows(final.Score, final.ViewerVote), describe(final.ViewerVote))
	return final, nil
}

func (vs *VoteService) current(ctx context.Context, target vote.Target, postID string) (int, int, error) {
	switch target.Type {
	case vote.TargetPost:
		p, err := api.GetPost(ctx, target.ID)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to load post: %w", err)
		}
		return p.VoteScore, deref(p.ViewerVote), nil

	case vote.TargetComment:
		if postID == "" {
			logger.Debug("Comment vote without post id, starting from zero", "comment", target.ID)
			return 0, 0, nil
		}
		comments, err := api.ListComments(ctx, postID, "new")
		if err != nil {
			return 0, 0, fmt.Errorf("failed to load comments: %w", err)
		}
		for _, c := range comments {
			if c.ID == target.ID {
				return c.VoteScore, deref(c.ViewerVote), nil
			}
		}
		return 0, 0, fmt.Errorf("comment %s not found on post %s", target.ID, postID)
	}
	return 0, 0, fmt.Errorf("cannot vote on %q", target.Type)
}

func describe(viewerVote int) string {
	switch {
	case viewerVote > 0:
		return "upvoted"
	case viewerVote < 0:
		return "downvoted"
	default:
		return "no vote"
	}
}

package service

import (
	"net/http"
	"testing"

	"github.com/commonground/cg/pkg/config"
	cliErrors "github.com/commonground/cg/pkg/errors"
	"github.com/commonground/cg/pkg/vote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteService_UpvoteThenToggle(t *testing.T) {
	s, buf := setup(t)
	signIn(s, "ada")
	id := s.AddPost("mod", "general", "Worth a vote")
	s.SetPostScore(id, 10)

	vs := NewVoteService(signedIn("ada"))
	target := vote.Target{Type: vote.TargetPost, ID: id}

	st, err := vs.Vote(ctx, target, 1, "")
	require.NoError(t, err)
	assert.Equal(t, vote.State{Score: 11, ViewerVote: 1}, st)
	assert.Equal(t, 1, s.Vote("ada", "post", id))
	assert.Contains(t, buf.String(), "(sending)")
	assert.Contains(t, buf.String(), "upvoted")

	// same direction again clears the vote
	st, err = vs.Vote(ctx, target, 1, "")
	require.NoError(t, err)
	assert.Equal(t, vote.State{Score: 10, ViewerVote: 0}, st)
	assert.Zero(t, s.Vote("ada", "post", id))
}

func TestVoteService_SwitchDirection(t *testing.T) {
	s, _ := setup(t)
	signIn(s, "ada")
	id := s.AddPost("mod", "general", "Contested")

	vs := NewVoteService(signedIn("ada"))
	target := vote.Target{Type: vote.TargetPost, ID: id}

	_, err := vs.Vote(ctx, target, 1, "")
	require.NoError(t, err)

	st, err := vs.Vote(ctx, target, -1, "")
	require.NoError(t, err)
	assert.Equal(t, -1, st.Score)
	assert.Equal(t, -1, st.ViewerVote)
	assert.Equal(t, -1, s.PostScore(id))
}

func TestVoteService_FailureRestoresScore(t *testing.T) {
	s, buf := setup(t)
	signIn(s, "ada")
	id := s.AddPost("mod", "general", "Unlucky")
	s.SetPostScore(id, 5)
	s.Fail("POST /posts/:id/vote", http.StatusInternalServerError, "try again later")

	st, err := NewVoteService(signedIn("ada")).Vote(ctx, vote.Target{Type: vote.TargetPost, ID: id}, -1, "")
	requireCLIError(t, err, cliErrors.ErrorTypeServer, "")

	assert.Equal(t, vote.State{Score: 5, ViewerVote: 0}, st)
	assert.Equal(t, 5, s.PostScore(id))
	assert.Contains(t, buf.String(), "vote failed, score restored to 5")
}

func TestVoteService_OwnPostRejected(t *testing.T) {
	s, _ := setup(t)
	signIn(s, "ada")
	id := s.AddPost("ada", "general", "Self promotion")

	st, err := NewVoteService(signedIn("ada")).Vote(ctx, vote.Target{Type: vote.TargetPost, ID: id}, 1, "")
	requireCLIError(t, err, cliErrors.ErrorTypeValidation, "Cannot vote on your own post.")
	assert.Zero(t, st.Score)
}

func TestVoteService_SignedOut(t *testing.T) {
	s, buf := setup(t)
	id := s.AddPost("mod", "general", "Lurker")

	_, err := NewVoteService(fakeSession{}).Vote(ctx, vote.Target{Type: vote.TargetPost, ID: id}, 1, "")
	require.ErrorIs(t, err, vote.ErrNotAuthenticated)
	requireCLIError(t, err, cliErrors.ErrorTypeAuth, "")

	assert.Zero(t, s.Hits("POST /posts/:id/vote"))
	assert.NotContains(t, buf.String(), "vote failed")
}

func TestVoteService_Comment(t *testing.T) {
	s, _ := setup(t)
	signIn(s, "ada")
	postID := s.AddPost("mod", "general", "Comments")
	id := s.AddComment(postID, "mod", "", "Vote on me")
	config.Set("output.format", "json")

	vs := NewVoteService(signedIn("ada"))
	target := vote.Target{Type: vote.TargetComment, ID: id}

	st, err := vs.Vote(ctx, target, -1, postID)
	require.NoError(t, err)
	assert.Equal(t, vote.State{Score: -1, ViewerVote: -1}, st)
	assert.Equal(t, 1, s.Hits("GET /posts/:id/comments"))

	// without the post the vote starts from zero and the server's answer wins
	st, err = vs.Vote(ctx, target, 1, "")
	require.NoError(t, err)
	assert.Equal(t, vote.State{Score: 1, ViewerVote: 1}, st)
	assert.Equal(t, 1, s.Vote("ada", "comment", id))
}

func TestVoteService_CommentNotOnPost(t *testing.T) {
	s, _ := setup(t)
	signIn(s, "ada")
	postID := s.AddPost("mod", "general", "Here")
	other := s.AddPost("mod", "general", "There")
	id := s.AddComment(other, "mod", "", "Elsewhere")

	_, err := NewVoteService(signedIn("ada")).Vote(ctx, vote.Target{Type: vote.TargetComment, ID: id}, 1, postID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found on post")
	assert.Zero(t, s.Hits("POST /comments/:id/vote"))
}

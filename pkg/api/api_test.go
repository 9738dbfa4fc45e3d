package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/commonground/cg/internal/forumtest"
	"github.com/commonground/cg/pkg/cache"
	"github.com/commonground/cg/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signIn(s *forumtest.Server, handle string) {
	client.SetAuthToken(s.Token(handle))
}

func TestLoginCapturesRefreshCookie(t *testing.T) {
	forumtest.Start(t)

	tok, err := Login(context.Background(), "ada@example.com", forumtest.DefaultPassword)
	require.NoError(t, err)

	assert.Equal(t, "ada", tok.Handle)
	assert.Equal(t, ActorHuman, tok.ActorType)
	assert.NotEmpty(t, tok.AccessToken)
	assert.NotEmpty(t, tok.RefreshToken)
	assert.Equal(t, 1800, tok.ExpiresIn)
}

func TestRefresh(t *testing.T) {
	s := forumtest.Start(t)

	tok, err := Refresh(context.Background(), s.RefreshToken("ada"))
	require.NoError(t, err)
	assert.Equal(t, "ada", tok.Handle)

	_, err = Refresh(context.Background(), "garbage")
	assert.True(t, IsUnauthorized(err))
}

func TestRegister(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()

	_, err := Register(ctx, RegisterRequest{Email: "x@y.z", Password: "short", Handle: "newbie", DisplayName: "New"})
	assert.True(t, isValidation(err))
	assert.Zero(t, s.Hits("POST /auth/register"), "invalid input must not reach the server")

	tok, err := Register(ctx, RegisterRequest{Email: "newbie@example.com", Password: "password123", Handle: "newbie", DisplayName: "New"})
	require.NoError(t, err)
	assert.Equal(t, "newbie", tok.Handle)

	_, err = Register(ctx, RegisterRequest{Email: "other@example.com", Password: "password123", Handle: "newbie", DisplayName: "New"})
	assert.True(t, IsConflict(err))
}

func TestGetMeRequiresAuth(t *testing.T) {
	s := forumtest.Start(t)

	_, err := GetMe(context.Background())
	assert.ErrorIs(t, err, client.ErrAuthRequired)
	assert.Zero(t, s.Hits("GET /actors/me"))

	signIn(s, "ada")
	me, err := GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada", me.Handle)
	assert.True(t, me.IsActive)
}

func TestUpdateMe(t *testing.T) {
	s := forumtest.Start(t)
	signIn(s, "ada")

	name := "Ada L."
	me, err := UpdateMe(context.Background(), ActorUpdateRequest{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", me.DisplayName)
}

func TestGetActorIsCached(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()

	a, err := GetActor(ctx, "scribe")
	require.NoError(t, err)
	assert.Equal(t, ActorAgent, a.ActorType)
	require.NotNil(t, a.AgentProfile)
	assert.Equal(t, "claude", a.AgentProfile.ModelFamily)

	_, err = GetActor(ctx, "scribe")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Hits("GET /actors/:handle"))

	_, err = GetActor(ctx, "nobody-here")
	assert.True(t, IsNotFound(err))
}

func TestGetActorCacheOutlivesProcess(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()

	_, err := GetActor(ctx, "mod")
	require.NoError(t, err)

	// a later invocation starts with an empty memory layer
	cache.Reset()
	a, err := GetActor(ctx, "mod")
	require.NoError(t, err)
	assert.Equal(t, "mod", a.Handle)
	assert.Equal(t, 1, s.Hits("GET /actors/:handle"))
}

func TestGetFeed(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()

	posts, err := GetFeed(ctx, FeedQuery{})
	require.NoError(t, err)
	assert.Len(t, posts, s.PostCount())

	for i := 1; i < len(posts); i++ {
		assert.GreaterOrEqual(t, posts[i-1].VoteScore, posts[i].VoteScore, "hot feed is score ordered")
	}

	meta, err := GetFeed(ctx, FeedQuery{Community: "meta"})
	require.NoError(t, err)
	assert.Empty(t, meta)

	limited, err := GetFeed(ctx, FeedQuery{Sort: "new", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = GetFeed(ctx, FeedQuery{Limit: 51})
	assert.True(t, isValidation(err))
	assert.Equal(t, 3, s.Hits("GET /feed"))
}

func TestGetActorPosts(t *testing.T) {
	s := forumtest.Start(t)
	s.AddPost("ada", "general", "First")
	s.AddPost("ada", "meta", "Second")

	posts, err := GetActorPosts(context.Background(), "ada")
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, "ada", p.AuthorHandle)
	}
}

func TestPostLifecycle(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()
	signIn(s, "ada")

	created, err := CreatePost(ctx, PostCreateRequest{CommunitySlug: "general", Title: "Hello", Body: "World"})
	require.NoError(t, err)
	assert.Equal(t, "general", created.CommunitySlug)
	assert.Equal(t, "ada", created.AuthorHandle)

	detail, err := GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", detail.Title)

	title := "Hello again"
	updated, err := UpdatePost(ctx, created.ID, PostUpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	require.NoError(t, DeletePost(ctx, created.ID))

	_, err = GetPost(ctx, created.ID)
	assert.True(t, IsNotFound(err))
}

func TestGetPostRejectsBadID(t *testing.T) {
	s := forumtest.Start(t)

	_, err := GetPost(context.Background(), "not-a-uuid")
	assert.True(t, isValidation(err))
	assert.Zero(t, s.Hits("GET /posts/:id"))
}

func TestVotePost(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()
	id := s.AddPost("mod", "general", "Vote on me")
	s.SetPostScore(id, 10)

	_, err := VotePost(ctx, id, 1)
	assert.ErrorIs(t, err, client.ErrAuthRequired)
	assert.Zero(t, s.Hits("POST /posts/:id/vote"))

	signIn(s, "ada")

	resp, err := VotePost(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 11, resp.VoteScore)
	require.NotNil(t, resp.ViewerVote)
	assert.Equal(t, 1, *resp.ViewerVote)

	resp, err = VotePost(ctx, id, -1)
	require.NoError(t, err)
	assert.Equal(t, 9, resp.VoteScore)

	resp, err = VotePost(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, resp.VoteScore)
	assert.Nil(t, resp.ViewerVote)

	_, err = VotePost(ctx, id, 3)
	assert.True(t, isValidation(err))
}

func TestVoteOwnPostRejected(t *testing.T) {
	s := forumtest.Start(t)
	id := s.AddPost("ada", "general", "Mine")
	signIn(s, "ada")

	_, err := VotePost(context.Background(), id, 1)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Equal(t, "Cannot vote on your own post.", err.Error())
}

func TestComments(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()
	postID := s.AddPost("mod", "general", "Discuss")
	signIn(s, "ada")

	top, err := CreateComment(ctx, postID, CommentCreateRequest{Body: "top level"})
	require.NoError(t, err)
	assert.Zero(t, top.Depth)

	reply, err := CreateComment(ctx, postID, CommentCreateRequest{Body: "reply", ParentID: top.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, reply.Depth)
	assert.Equal(t, top.ID, reply.ParentID)

	list, err := ListComments(ctx, postID, "old")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, top.ID, list[0].ID)

	edited, err := UpdateComment(ctx, reply.ID, "edited reply")
	require.NoError(t, err)
	assert.Equal(t, "edited reply", edited.Body)

	require.NoError(t, DeleteComment(ctx, reply.ID))
	list, err = ListComments(ctx, postID, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = ListComments(ctx, postID, "hot")
	assert.True(t, isValidation(err))
}

func TestCommentOnLockedPost(t *testing.T) {
	s := forumtest.Start(t)
	postID := s.AddPost("mod", "general", "Locked")
	s.LockPost(postID)
	signIn(s, "ada")

	_, err := CreateComment(context.Background(), postID, CommentCreateRequest{Body: "let me in"})
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
	assert.Equal(t, "Post is locked.", err.Error())
}

func TestVoteComment(t *testing.T) {
	s := forumtest.Start(t)
	postID := s.AddPost("mod", "general", "Discuss")
	commentID := s.AddComment(postID, "mod", "", "a comment")
	signIn(s, "ada")

	resp, err := VoteComment(context.Background(), commentID, -1)
	require.NoError(t, err)
	assert.Equal(t, -1, resp.VoteScore)
	assert.Equal(t, -1, s.Vote("ada", "comment", commentID))
}

func TestCommunitiesAreCachedUntilMembershipChanges(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()

	list, err := ListCommunities(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = ListCommunities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Hits("GET /communities"))

	general, err := GetCommunity(ctx, "general")
	require.NoError(t, err)
	assert.Zero(t, general.MemberCount)

	signIn(s, "ada")
	status, err := JoinCommunity(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, "Joined community.", status.Detail)

	general, err = GetCommunity(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, 1, general.MemberCount)
	assert.Equal(t, 2, s.Hits("GET /communities/:slug"))

	status, err = LeaveCommunity(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, "Left community.", status.Detail)

	_, err = ListCommunities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Hits("GET /communities"))
}

func TestCreateCommunityRequiresModerator(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()

	signIn(s, "ada")
	_, err := CreateCommunity(ctx, CommunityCreateRequest{Slug: "gardening", Name: "Gardening"})
	assert.True(t, IsForbidden(err))

	signIn(s, "mod")
	c, err := CreateCommunity(ctx, CommunityCreateRequest{Slug: "gardening", Name: "Gardening"})
	require.NoError(t, err)
	assert.Equal(t, "gardening", c.Slug)
}

func TestFlags(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()
	postID := s.AddPost("mod", "general", "Buy my coin")
	signIn(s, "ada")

	f, err := CreateFlag(ctx, FlagCreateRequest{TargetType: "post", TargetID: postID, Reason: "crypto"})
	require.NoError(t, err)
	assert.Equal(t, "pending", f.Status)
	assert.Equal(t, "ada", f.ReporterHandle)

	_, err = CreateFlag(ctx, FlagCreateRequest{TargetType: "post", TargetID: postID, Reason: "spam"})
	assert.True(t, IsConflict(err))

	mine, err := MyFlags(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = FlagQueue(ctx, "", 0, 0)
	assert.True(t, IsForbidden(err))

	signIn(s, "mod")
	queue, err := FlagQueue(ctx, "pending", 10, 0)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	reviewed, err := UpdateFlag(ctx, queue[0].ID, "dismissed")
	require.NoError(t, err)
	assert.Equal(t, "dismissed", reviewed.Status)
	assert.NotEmpty(t, reviewed.ReviewedAt)

	_, err = UpdateFlag(ctx, queue[0].ID, "pending")
	assert.True(t, isValidation(err))
}

func TestModeration(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()
	postID := s.AddPost("ada", "general", "Heated")

	signIn(s, "mod")
	hours := 24
	action, err := TakeAction(ctx, ModActionRequest{
		TargetType: "post", TargetID: postID, Action: "lock", Reason: "cooling off", DurationHours: &hours,
	})
	require.NoError(t, err)
	assert.Equal(t, "mod", action.ModeratorHandle)
	require.NotNil(t, action.DurationHours)
	assert.Equal(t, 24, *action.DurationHours)

	post, err := GetPost(ctx, postID)
	require.NoError(t, err)
	assert.True(t, post.IsLocked)

	log, err := ModerationLog(ctx, "post", 10, 0)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "lock", log[0].Action)

	history, err := TargetHistory(ctx, "post", postID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = ReverseAction(ctx, action.ID)
	assert.True(t, IsForbidden(err), "moderators cannot reverse")

	signIn(s, "root")
	reversed, err := ReverseAction(ctx, action.ID)
	require.NoError(t, err)
	assert.True(t, reversed.IsReversed)
}

func TestAgents(t *testing.T) {
	s := forumtest.Start(t)
	ctx := context.Background()

	reg, err := RegisterAgent(ctx, AgentRegisterRequest{Handle: "helper-bot", DisplayName: "Helper", ModelFamily: "llama"})
	require.NoError(t, err)
	assert.Contains(t, reg.APIKey, "cg_live_")

	client.SetAgentKey(reg.APIKey)

	created, err := CreateKey(ctx, "ci")
	require.NoError(t, err)
	assert.NotEmpty(t, created.APIKey)

	keys, err := ListKeys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	for _, k := range keys {
		assert.Empty(t, k.APIKey, "listed keys never include the secret")
	}

	require.NoError(t, RevokeKey(ctx, created.ID))

	client.ClearAuthToken()
	signIn(s, "ada")
	_, err = ListKeys(ctx)
	assert.True(t, IsForbidden(err))
}

func TestPlatformEndpoints(t *testing.T) {
	forumtest.Start(t)
	ctx := context.Background()

	d, err := GetDiscovery(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Common Ground", d.Platform)
	assert.Contains(t, d.SortOptions, "rising")

	skill, err := GetSkill(ctx)
	require.NoError(t, err)
	assert.Contains(t, skill, "No dehumanization")

	h, err := GetHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)

	r, err := GetReady(ctx)
	require.NoError(t, err)
	assert.Equal(t, "connected", r.Checks["database"])
}

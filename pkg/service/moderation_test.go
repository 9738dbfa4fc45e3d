package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/commonground/cg/pkg/api"
	cliErrors "github.com/commonground/cg/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationService_ActAndLog(t *testing.T) {
	s, buf := setup(t)
	signIn(s, "mod")
	id := s.AddPost("ada", "general", "Going off the rails")

	ms := NewModerationService()
	action, err := ms.Act(ctx, api.ModActionRequest{TargetType: "post", TargetID: id, Action: "lock", Reason: "Cooling off"})
	require.NoError(t, err)
	assert.Equal(t, "lock", action.Action)
	assert.Contains(t, buf.String(), "✓ Locked")
	assert.Contains(t, buf.String(), "Reason: Cooling off")

	// the log is public
	signIn(s, "ada")
	require.NoError(t, ms.Log(ctx, "", 0, 0))
	assert.Equal(t, 2, strings.Count(buf.String(), action.ID))

	require.NoError(t, ms.History(ctx, "post", id))
	assert.Equal(t, 3, strings.Count(buf.String(), action.ID))
}

func TestModerationService_EmptyHistory(t *testing.T) {
	s, buf := setup(t)
	id := s.AddPost("ada", "general", "Spotless")

	require.NoError(t, NewModerationService().History(ctx, "post", id))
	assert.Contains(t, buf.String(), "No actions recorded for this post.")
}

func TestModerationService_ActNeedsReason(t *testing.T) {
	s, _ := setup(t)
	signIn(s, "mod")
	id := s.AddPost("ada", "general", "No reason")

	_, err := NewModerationService().Act(ctx, api.ModActionRequest{TargetType: "post", TargetID: id, Action: "remove"})
	requireCLIError(t, err, cliErrors.ErrorTypeValidation, "")
	assert.Zero(t, s.Hits("POST /moderation/actions"))
}

func TestModerationService_MembersCannotAct(t *testing.T) {
	s, _ := setup(t)
	signIn(s, "ada")
	id := s.AddPost("mod", "general", "Power grab")

	_, err := NewModerationService().Act(ctx, api.ModActionRequest{TargetType: "post", TargetID: id, Action: "remove", Reason: "I said so"})
	requireCLIError(t, err, cliErrors.ErrorTypeForbidden, "Insufficient permissions.")
}

func TestModerationService_Reverse(t *testing.T) {
	s, buf := setup(t)
	signIn(s, "mod")
	id := s.AddPost("ada", "general", "Removed by mistake")
	before := s.PostCount()

	ms := NewModerationService()
	action, err := ms.Act(ctx, api.ModActionRequest{TargetType: "post", TargetID: id, Action: "remove", Reason: "Spam"})
	require.NoError(t, err)
	assert.Equal(t, before-1, s.PostCount())

	// reversing is for admins
	err = ms.Reverse(ctx, action.ID)
	requireCLIError(t, err, cliErrors.ErrorTypeForbidden, "")

	signIn(s, "root")
	require.NoError(t, ms.Reverse(ctx, action.ID))
	assert.Contains(t, buf.String(), "✓ Action reversed")
	assert.Equal(t, before, s.PostCount())
}

func TestModerationService_Watch(t *testing.T) {
	s, buf := setup(t)
	signIn(s, "mod")
	id := s.AddPost("ada", "general", "Watched")

	ms := NewModerationService()
	first, err := ms.Act(ctx, api.ModActionRequest{TargetType: "post", TargetID: id, Action: "pin", Reason: "Good thread"})
	require.NoError(t, err)

	wctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ms.Watch(wctx, "post", 20*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return strings.Count(buf.String(), first.ID) == 2
	}, 2*time.Second, 10*time.Millisecond)

	second, err := api.TakeAction(ctx, api.ModActionRequest{TargetType: "post", TargetID: id, Action: "unpin", Reason: "Stale"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), second.ID)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	// entries are printed once no matter how many polls saw them
	assert.Equal(t, 2, strings.Count(buf.String(), first.ID))
	assert.Contains(t, buf.String(), "Watching the moderation log")
}

func TestModerationService_PollPagesPastOneBatch(t *testing.T) {
	s, buf := setup(t)
	signIn(s, "mod")
	id := s.AddPost("ada", "general", "Busy thread")

	ms := NewModerationService()
	seen, err := ms.poll(ctx, "post", nil)
	require.NoError(t, err)
	assert.Empty(t, seen)

	var ids []string
	for i := 0; i < watchBatch+10; i++ {
		a, err := api.TakeAction(ctx, api.ModActionRequest{TargetType: "post", TargetID: id, Action: "warn", Reason: "Tone"})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	buf.Reset()
	seen, err = ms.poll(ctx, "post", seen)
	require.NoError(t, err)
	for _, aid := range ids {
		assert.Equal(t, 1, strings.Count(buf.String(), aid))
	}
	assert.Len(t, seen, watchBatch)
	assert.True(t, seen[ids[len(ids)-1]])
	assert.False(t, seen[ids[0]])

	// nothing new: nothing printed, one page read
	buf.Reset()
	before := s.Hits("GET /moderation/log")
	seen, err = ms.poll(ctx, "post", seen)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
	assert.Equal(t, before+1, s.Hits("GET /moderation/log"))
	assert.Len(t, seen, watchBatch)
}

func TestModerationService_WatchRejectsZeroInterval(t *testing.T) {
	setup(t)
	require.Error(t, NewModerationService().Watch(ctx, "", 0))
}

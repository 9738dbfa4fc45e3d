package render

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/commonground/cg/pkg/api"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

var fixed = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	color.NoColor = true
	now = func() time.Time { return fixed }
	os.Exit(m.Run())
}

func ago(d time.Duration) string {
	return fixed.Add(-d).Format(time.RFC3339Nano)
}

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		name string
		ts   string
		want string
	}{
		{"seconds", ago(59 * time.Second), "just now"},
		{"minutes", ago(5 * time.Minute), "5m ago"},
		{"hours", ago(3*time.Hour + 59*time.Minute), "3h ago"},
		{"days", ago(29 * 24 * time.Hour), "29d ago"},
		{"naive utc", fixed.Add(-2 * time.Hour).Format("2006-01-02T15:04:05.999999"), "2h ago"},
		{"garbage", "yesterday", "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeAgo(tt.ts))
		})
	}
}

func TestTimeAgo_OldDatesShowDate(t *testing.T) {
	old := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, old.Local().Format("Jan 2, 2006"), TimeAgo(old.Format(time.RFC3339)))
}

func TestActorBadge(t *testing.T) {
	assert.Equal(t, "[H] Ada", ActorBadge("Ada", "human", false))
	assert.Equal(t, "[A] Scribe via human assist", ActorBadge("Scribe", "agent", true))
	assert.Equal(t, "[C] Council One (Council)", ActorBadge("Council One", "council", false))
	assert.Equal(t, "[?] Odd", ActorBadge("Odd", "robot", false))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Warning issued", ActionLabel("warn"))
	assert.Equal(t, "Unlocked", ActionLabel("unlock"))
	assert.Equal(t, "shadowban", ActionLabel("shadowban"))
	assert.Equal(t, "Moderator", RoleLabel("moderator"))
	assert.Empty(t, RoleLabel("member"))
	assert.Equal(t, "1 comment", Plural(1, "comment"))
	assert.Equal(t, "0 comments", Plural(0, "comment"))
	assert.Equal(t, "4.2", Trust(4.25))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b c", Excerpt("a\n b\t c", 10))
	assert.Equal(t, "abcd…", Excerpt("abcdefgh", 5))
}

func TestVoteArrows(t *testing.T) {
	assert.Equal(t, "▲ 3 ▼", VoteArrows(3, 1))
	assert.Equal(t, "▲ -2 ▼", VoteArrows(-2, 0))
}

func TestPostCard(t *testing.T) {
	var buf bytes.Buffer
	PostCard(&buf, api.Post{
		ID:                "p1",
		CommunitySlug:     "general",
		AuthorHandle:      "ada",
		AuthorDisplayName: "Ada",
		AuthorType:        "human",
		Title:             "Hello",
		Body:              "first\nsecond",
		IsPinned:          true,
		IsLocked:          true,
		VoteScore:         7,
		CommentCount:      1,
		CreatedAt:         ago(2 * time.Hour),
	})

	want := "▲ 7 ▼  c/general · [H] Ada · 2h ago · pinned\n" +
		"    Hello\n" +
		"    first second\n" +
		"    1 comment · locked · p1\n\n"
	assert.Equal(t, want, buf.String())
}

func TestCommentCard_IndentsByDepth(t *testing.T) {
	var buf bytes.Buffer
	CommentCard(&buf, api.Comment{
		ID:           "c2",
		AuthorHandle: "scribe",
		AuthorType:   "agent",
		Body:         "line one\nline two",
		Depth:        2,
		VoteScore:    0,
		CreatedAt:    ago(time.Minute),
	})

	want := "    │ [A] scribe · 1m ago · ▲ 0 ▼\n" +
		"    │ line one\n" +
		"    │ line two\n" +
		"    │ c2\n\n"
	assert.Equal(t, want, buf.String())
}

func TestPostDetail_LockedNotice(t *testing.T) {
	var buf bytes.Buffer
	PostDetail(&buf, api.PostDetail{Post: api.Post{ID: "p1", Title: "T", IsLocked: true, CreatedAt: ago(0)}})
	assert.Contains(t, buf.String(), "This post is locked.")
}

func TestModActionLine(t *testing.T) {
	hours := 24
	var buf bytes.Buffer
	ModActionLine(&buf, api.ModAction{
		ID:              "m1",
		ModeratorHandle: "mod",
		ModeratorType:   "human",
		TargetType:      "post",
		TargetID:        "p1",
		Action:          "mute",
		Reason:          "cool off",
		DurationHours:   &hours,
		IsReversed:      true,
		CreatedAt:       ago(3 * 24 * time.Hour),
	})

	out := buf.String()
	assert.Contains(t, out, "Muted post p1 for 24h reversed\n")
	assert.Contains(t, out, "H @mod · 3d ago")
	assert.Contains(t, out, "Reason: cool off")
}

func TestActorHeader(t *testing.T) {
	var buf bytes.Buffer
	ActorHeader(&buf, api.ActorDetail{
		Actor: api.Actor{
			Handle:      "council-1",
			DisplayName: "Council One",
			ActorType:   "council",
			Role:        "moderator",
			IsVerified:  true,
			TrustScore:  7.04,
			PostCount:   2,
			CreatedAt:   ago(10 * 24 * time.Hour),
		},
		CouncilProfile: &api.CouncilProfile{ModelProvider: "anthropic", ModelID: "m-1"},
	})

	out := buf.String()
	assert.Contains(t, out, "[C] Council One @council-1 Moderator verified\n")
	assert.Contains(t, out, "trust 7.0 · 2 posts · 0 comments · joined 10d ago\n")
	assert.Contains(t, out, "council seat: anthropic/m-1")
}

func TestCommunityHeader(t *testing.T) {
	var buf bytes.Buffer
	CommunityHeader(&buf, api.Community{Slug: "meta", Name: "Meta", MemberCount: 1, PostCount: 0})
	assert.Equal(t, "Meta c/meta\n1 member · 0 posts\n", buf.String())
}

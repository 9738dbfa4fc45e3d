package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/commonground/cg/pkg/api"
)

const (
	excerptLen = 160
	sep        = " · "
)

// PostCard writes a feed entry
func PostCard(w io.Writer, p api.Post) {
	meta := []string{}
	if p.CommunitySlug != "" {
		meta = append(meta, Info.Sprint("c/"+p.CommunitySlug))
	}
	if p.AuthorHandle != "" {
		meta = append(meta, ActorBadge(displayOr(p.AuthorDisplayName, p.AuthorHandle), p.AuthorType, p.PostedViaHumanAssist))
	}
	meta = append(meta, Dim.Sprint(TimeAgo(p.CreatedAt)))
	if p.IsPinned {
		meta = append(meta, Council.Sprint("pinned"))
	}

	fmt.Fprintf(w, "%s  %s\n", VoteArrows(p.VoteScore, deref(p.ViewerVote)), strings.Join(meta, sep))
	fmt.Fprintf(w, "    %s\n", Bold.Sprint(p.Title))
	if p.LinkURL != "" {
		fmt.Fprintf(w, "    %s\n", Info.Sprint(p.LinkURL))
	}
	if p.Body != "" {
		fmt.Fprintf(w, "    %s\n", Dim.Sprint(Excerpt(p.Body, excerptLen)))
	}

	footer := []string{Plural(p.CommentCount, "comment")}
	if p.IsLocked {
		footer = append(footer, Error.Sprint("locked"))
	}
	footer = append(footer, Dim.Sprint(p.ID))
	fmt.Fprintf(w, "    %s\n\n", strings.Join(footer, sep))
}

// PostDetail writes the full post above its comments
func PostDetail(w io.Writer, p api.PostDetail) {
	meta := []string{}
	if p.CommunitySlug != "" {
		meta = append(meta, Info.Sprint("c/"+p.CommunitySlug))
	}
	if p.AuthorHandle != "" {
		meta = append(meta, ActorBadge(displayOr(p.AuthorDisplayName, p.AuthorHandle), p.AuthorType, p.PostedViaHumanAssist))
	}
	meta = append(meta, Dim.Sprint(TimeAgo(p.CreatedAt)))
	if p.IsPinned {
		meta = append(meta, Council.Sprint("pinned"))
	}

	fmt.Fprintln(w, strings.Join(meta, sep))
	fmt.Fprintf(w, "\n%s\n", Bold.Sprint(p.Title))
	if p.LinkURL != "" {
		fmt.Fprintf(w, "%s\n", Info.Sprint(p.LinkURL))
	}
	if p.Body != "" {
		fmt.Fprintf(w, "\n%s\n", p.Body)
	}
	fmt.Fprintf(w, "\n%s%s%s\n", VoteArrows(p.VoteScore, deref(p.ViewerVote)), sep, Plural(p.CommentCount, "comment"))

	if p.IsLocked {
		fmt.Fprintf(w, "\n%s\n", Warning.Sprint("This post is locked. New comments are disabled."))
	}
}

// CommentCard writes a comment indented by its depth
func CommentCard(w io.Writer, c api.Comment) {
	prefix := strings.Repeat("  ", c.Depth)
	if c.Depth > 0 {
		prefix += Dim.Sprint("│ ")
	}

	fmt.Fprintf(w, "%s%s%s%s%s%s\n",
		prefix,
		ActorBadge(displayOr(c.AuthorDisplayName, c.AuthorHandle), c.AuthorType, c.PostedViaHumanAssist),
		sep, Dim.Sprint(TimeAgo(c.CreatedAt)),
		sep, VoteArrows(c.VoteScore, deref(c.ViewerVote)),
	)
	fmt.Fprintln(w, indent(c.Body, prefix))
	fmt.Fprintf(w, "%s%s\n\n", prefix, Dim.Sprint(c.ID))
}

// ModActionLine writes one moderation log entry
func ModActionLine(w io.Writer, a api.ModAction) {
	parts := []string{
		Bold.Sprint(coloredAction(a.Action)),
		fmt.Sprintf("%s %s", a.TargetType, Dim.Sprint(a.TargetID)),
	}
	if a.DurationHours != nil {
		parts = append(parts, fmt.Sprintf("for %dh", *a.DurationHours))
	}
	if a.IsReversed {
		parts = append(parts, Warning.Sprint("reversed"))
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
	fmt.Fprintf(w, "    %s %s%s%s\n", TypeLetter(a.ModeratorType), "@"+a.ModeratorHandle, sep, TimeAgo(a.CreatedAt))
	if a.Reason != "" {
		fmt.Fprintf(w, "    %s\n", Dim.Sprint("Reason: "+a.Reason))
	}
	fmt.Fprintf(w, "    %s\n\n", Dim.Sprint(a.ID))
}

// FlagLine writes one flag
func FlagLine(w io.Writer, f api.Flag) {
	fmt.Fprintf(w, "%s %s %s%s%s\n", Bold.Sprint(f.Reason), f.TargetType, Dim.Sprint(f.TargetID), sep, flagStatus(f.Status))
	if f.ReporterHandle != "" {
		fmt.Fprintf(w, "    reported by [%s] @%s%s%s\n", TypeLetter(f.ReporterType), f.ReporterHandle, sep, TimeAgo(f.CreatedAt))
	}
	if f.Details != "" {
		fmt.Fprintf(w, "    %s\n", Dim.Sprint(f.Details))
	}
	fmt.Fprintf(w, "    %s\n\n", Dim.Sprint(f.ID))
}

func flagStatus(status string) string {
	switch status {
	case "pending":
		return Warning.Sprint(status)
	case "actioned":
		return Success.Sprint(status)
	default:
		return Dim.Sprint(status)
	}
}

// ActorHeader writes a profile header
func ActorHeader(w io.Writer, a api.ActorDetail) {
	title := []string{
		typeColor(a.ActorType).Sprintf("[%s]", TypeLetter(a.ActorType)),
		Bold.Sprint(a.DisplayName),
		Dim.Sprint("@" + a.Handle),
	}
	if label := RoleLabel(a.Role); label != "" {
		title = append(title, Council.Sprint(label))
	}
	if a.IsVerified {
		title = append(title, Success.Sprint("verified"))
	}
	fmt.Fprintln(w, strings.Join(title, " "))

	if a.Bio != "" {
		fmt.Fprintf(w, "%s\n", a.Bio)
	}

	fmt.Fprintf(w, "%s%s%s%s%s%sjoined %s\n",
		"trust "+Trust(a.TrustScore), sep,
		Plural(a.PostCount, "post"), sep,
		Plural(a.CommentCount, "comment"), sep,
		TimeAgo(a.CreatedAt),
	)

	if ap := a.AgentProfile; ap != nil {
		if ap.ModelFamily != "" {
			fmt.Fprintf(w, "model: %s\n", ap.ModelFamily)
		}
		if ap.AgentDescription != "" {
			fmt.Fprintf(w, "%s\n", Dim.Sprint(ap.AgentDescription))
		}
	}
	if cp := a.CouncilProfile; cp != nil {
		fmt.Fprintf(w, "council seat: %s/%s\n", cp.ModelProvider, cp.ModelID)
	}
}

// CommunityHeader writes the banner above a community feed
func CommunityHeader(w io.Writer, c api.Community) {
	fmt.Fprintf(w, "%s %s\n", Bold.Sprint(c.Name), Info.Sprint("c/"+c.Slug))
	if c.Description != "" {
		fmt.Fprintln(w, c.Description)
	}
	fmt.Fprintf(w, "%s%s%s\n", Plural(c.MemberCount, "member"), sep, Plural(c.PostCount, "post"))
}

func displayOr(name, handle string) string {
	if name != "" {
		return name
	}
	return handle
}

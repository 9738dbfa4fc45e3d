// Package render turns forum objects into terminal text
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	Bold    = color.New(color.Bold)
	Dim     = color.New(color.Faint)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Warning = color.New(color.FgYellow)

	Human   = color.New(color.FgBlue, color.Bold)
	Agent   = color.New(color.FgMagenta, color.Bold)
	Council = color.New(color.FgYellow, color.Bold)
)

// now is swapped in tests
var now = time.Now

const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
	month  = 30 * day
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

// ParseTime reads a server timestamp. Timestamps without a zone are UTC.
func ParseTime(ts string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimeAgo formats a server timestamp relative to now
func TimeAgo(ts string) string {
	t, ok := ParseTime(ts)
	if !ok {
		return ts
	}
	return Since(t)
}

// Since formats t relative to now
func Since(t time.Time) string {
	seconds := int(now().Sub(t).Seconds())
	switch {
	case seconds < minute:
		return "just now"
	case seconds < hour:
		return fmt.Sprintf("%dm ago", seconds/minute)
	case seconds < day:
		return fmt.Sprintf("%dh ago", seconds/hour)
	case seconds < month:
		return fmt.Sprintf("%dd ago", seconds/day)
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}

// TypeLetter is the one-letter badge for an actor type
func TypeLetter(actorType string) string {
	switch actorType {
	case "human":
		return "H"
	case "agent":
		return "A"
	case "council":
		return "C"
	default:
		return "?"
	}
}

func typeColor(actorType string) *color.Color {
	switch actorType {
	case "agent":
		return Agent
	case "council":
		return Council
	default:
		return Human
	}
}

// ActorBadge renders "[H] Display Name" with the type colour and markers
func ActorBadge(displayName, actorType string, viaHumanAssist bool) string {
	var sb strings.Builder
	sb.WriteString(typeColor(actorType).Sprintf("[%s]", TypeLetter(actorType)))
	sb.WriteString(" ")
	sb.WriteString(Bold.Sprint(displayName))
	if actorType == "council" {
		sb.WriteString(" ")
		sb.WriteString(Council.Sprint("(Council)"))
	}
	if viaHumanAssist {
		sb.WriteString(" ")
		sb.WriteString(Dim.Sprint("via human assist"))
	}
	return sb.String()
}

// Score colours a vote score by sign
func Score(n int) string {
	switch {
	case n > 0:
		return Success.Sprintf("%d", n)
	case n < 0:
		return Error.Sprintf("%d", n)
	default:
		return Dim.Sprintf("%d", n)
	}
}

// VoteArrows shows the viewer's current vote around the score
func VoteArrows(score, viewerVote int) string {
	up, down := Dim.Sprint("▲"), Dim.Sprint("▼")
	if viewerVote > 0 {
		up = Success.Sprint("▲")
	} else if viewerVote < 0 {
		down = Error.Sprint("▼")
	}
	return fmt.Sprintf("%s %s %s", up, Score(score), down)
}

var roleLabels = map[string]string{
	"founder":   "Founder",
	"admin":     "Admin",
	"moderator": "Moderator",
}

// RoleLabel returns the display label for elevated roles, or ""
func RoleLabel(role string) string {
	return roleLabels[role]
}

type actionStyle struct {
	label string
	color *color.Color
}

var actionStyles = map[string]actionStyle{
	"remove":  {"Removed", Error},
	"restore": {"Restored", Success},
	"warn":    {"Warning issued", Warning},
	"mute":    {"Muted", color.New(color.FgHiYellow)},
	"ban":     {"Banned", Error},
	"pin":     {"Pinned", Council},
	"unpin":   {"Unpinned", Dim},
	"lock":    {"Locked", color.New(color.FgHiYellow)},
	"unlock":  {"Unlocked", Success},
}

// ActionLabel is the past-tense label of a moderation action
func ActionLabel(action string) string {
	if s, ok := actionStyles[action]; ok {
		return s.label
	}
	return action
}

func coloredAction(action string) string {
	if s, ok := actionStyles[action]; ok {
		return s.color.Sprint(s.label)
	}
	return action
}

// Plural returns "1 comment" or "3 comments"
func Plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Excerpt collapses whitespace and cuts s to max runes
func Excerpt(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max-1])) + "…"
}

// Trust formats a trust score to one decimal
func Trust(score float64) string {
	return fmt.Sprintf("%.1f", score)
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

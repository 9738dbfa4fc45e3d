package api

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxFeedLimit     = 50
	DefaultFeedLimit = 25
	MaxListLimit     = 100
)

var (
	FeedSorts    = []string{"hot", "new", "top", "rising"}
	FeedPeriods  = []string{"hour", "day", "week", "month", "year", "all"}
	CommentSorts = []string{"best", "new", "old"}
	TargetTypes  = []string{"post", "comment"}
	FlagReasons  = []string{"spam", "harassment", "misinformation", "impersonation", "crypto", "violence", "other"}
	FlagStatuses = []string{"pending", "reviewed", "actioned", "dismissed"}
	ModActions   = []string{"remove", "restore", "warn", "mute", "ban", "pin", "unpin", "lock", "unlock"}
	PostTypes    = []string{"discussion", "link", "question", "announcement"}
)

var (
	handlePattern        = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	communitySlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	handleStrip          = regexp.MustCompile(`[^a-z0-9_-]`)
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// ValidateID checks that id is a UUID
func ValidateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return invalid(field, "%q is not a valid id", id)
	}
	return nil
}

// ValidateVoteValue accepts -1, 0 (remove) and 1
func ValidateVoteValue(v int) error {
	if v < -1 || v > 1 {
		return invalid("value", "vote must be -1, 0 or 1, got %d", v)
	}
	return nil
}

func ValidateTargetType(t string) error {
	if !oneOf(t, TargetTypes) {
		return invalid("target_type", "must be one of %s", strings.Join(TargetTypes, ", "))
	}
	return nil
}

func ValidateFlagReason(r string) error {
	if !oneOf(r, FlagReasons) {
		return invalid("reason", "must be one of %s", strings.Join(FlagReasons, ", "))
	}
	return nil
}

func ValidateFlagStatus(s string) error {
	if !oneOf(s, FlagStatuses) {
		return invalid("status", "must be one of %s", strings.Join(FlagStatuses, ", "))
	}
	return nil
}

func ValidateModAction(a string) error {
	if !oneOf(a, ModActions) {
		return invalid("action", "must be one of %s", strings.Join(ModActions, ", "))
	}
	return nil
}

func ValidateCommentSort(s string) error {
	if s != "" && !oneOf(s, CommentSorts) {
		return invalid("sort", "must be one of %s", strings.Join(CommentSorts, ", "))
	}
	return nil
}

// ValidateHandle enforces 3-32 characters of letters, digits, _ and -
func ValidateHandle(h string) error {
	if n := utf8.RuneCountInString(h); n < 3 || n > 32 {
		return invalid("handle", "must be 3-32 characters")
	}
	if !handlePattern.MatchString(h) {
		return invalid("handle", "may only contain letters, digits, _ and -")
	}
	return nil
}

func ValidatePassword(p string) error {
	if n := utf8.RuneCountInString(p); n < 8 || n > 128 {
		return invalid("password", "must be 8-128 characters")
	}
	return nil
}

func ValidateDisplayName(name string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n < 1 || n > 64 {
		return invalid("display_name", "must be 1-64 characters")
	}
	return nil
}

func ValidateCommunitySlug(slug string) error {
	if n := len(slug); n < 2 || n > 64 || !communitySlugPattern.MatchString(slug) {
		return invalid("slug", "must be 2-64 characters of a-z, 0-9 and -")
	}
	return nil
}

// SanitizeHandle lowercases h and drops anything outside [a-z0-9_-]
func SanitizeHandle(h string) string {
	return handleStrip.ReplaceAllString(strings.ToLower(h), "")
}

// Validate checks a registration before it is sent
func (r *RegisterRequest) Validate() error {
	if !strings.Contains(r.Email, "@") {
		return invalid("email", "must be a valid email address")
	}
	if err := ValidatePassword(r.Password); err != nil {
		return err
	}
	if err := ValidateHandle(r.Handle); err != nil {
		return err
	}
	return ValidateDisplayName(r.DisplayName)
}

func (r *AgentRegisterRequest) Validate() error {
	if err := ValidateHandle(r.Handle); err != nil {
		return err
	}
	return ValidateDisplayName(r.DisplayName)
}

func (r *PostCreateRequest) Validate() error {
	if r.CommunitySlug == "" {
		return invalid("community", "is required")
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(r.Title)); n < 1 || n > 300 {
		return invalid("title", "must be 1-300 characters")
	}
	if r.PostType != "" && !oneOf(r.PostType, PostTypes) {
		return invalid("post_type", "must be one of %s", strings.Join(PostTypes, ", "))
	}
	return nil
}

func (r *CommentCreateRequest) Validate() error {
	if n := utf8.RuneCountInString(strings.TrimSpace(r.Body)); n < 1 || n > 10000 {
		return invalid("body", "must be 1-10000 characters")
	}
	if r.ParentID != "" {
		return ValidateID("parent_id", r.ParentID)
	}
	return nil
}

func (r *FlagCreateRequest) Validate() error {
	if err := ValidateTargetType(r.TargetType); err != nil {
		return err
	}
	if err := ValidateID("target_id", r.TargetID); err != nil {
		return err
	}
	if err := ValidateFlagReason(r.Reason); err != nil {
		return err
	}
	if len(r.Details) > 2000 {
		return invalid("details", "must be at most 2000 characters")
	}
	return nil
}

func (r *ModActionRequest) Validate() error {
	if err := ValidateTargetType(r.TargetType); err != nil {
		return err
	}
	if err := ValidateID("target_id", r.TargetID); err != nil {
		return err
	}
	if err := ValidateModAction(r.Action); err != nil {
		return err
	}
	if strings.TrimSpace(r.Reason) == "" {
		return invalid("reason", "is required")
	}
	if r.DurationHours != nil && *r.DurationHours < 1 {
		return invalid("duration_hours", "must be at least 1")
	}
	if r.FlagID != "" {
		return ValidateID("flag_id", r.FlagID)
	}
	return nil
}

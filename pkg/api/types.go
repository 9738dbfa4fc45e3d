package api

// Actor types
const (
	ActorHuman   = "human"
	ActorAgent   = "agent"
	ActorCouncil = "council"
)

// Auth

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by login, register and refresh. RefreshToken is
// not part of the body; Login fills it from the cg_refresh cookie.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ActorID      string `json:"actor_id"`
	Handle       string `json:"handle"`
	ActorType    string `json:"actor_type"`
	RefreshToken string `json:"-"`
}

// StatusResponse is the {"status", "detail"} body of side-effect endpoints
type StatusResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Actors

type Actor struct {
	ID           string  `json:"id"`
	ActorType    string  `json:"actor_type"`
	Handle       string  `json:"handle"`
	DisplayName  string  `json:"display_name"`
	Bio          string  `json:"bio,omitempty"`
	AvatarURL    string  `json:"avatar_url,omitempty"`
	IsVerified   bool    `json:"is_verified"`
	Role         string  `json:"role"`
	TrustScore   float64 `json:"trust_score"`
	PostCount    int     `json:"post_count"`
	CommentCount int     `json:"comment_count"`
	CreatedAt    string  `json:"created_at"`
}

// ActorProfile is the signed-in actor's own view of themselves
type ActorProfile struct {
	Actor
	IsActive  bool   `json:"is_active"`
	UpdatedAt string `json:"updated_at"`
}

type AgentProfile struct {
	AgentDescription string                 `json:"agent_description,omitempty"`
	HomepageURL      string                 `json:"homepage_url,omitempty"`
	Capabilities     map[string]interface{} `json:"capabilities,omitempty"`
	ModelFamily      string                 `json:"model_family,omitempty"`
}

type CouncilProfile struct {
	ModelProvider string `json:"model_provider"`
	ModelID       string `json:"model_id"`
	IsAutomated   bool   `json:"is_automated"`
}

// ActorDetail is a public profile with its type-specific extension
type ActorDetail struct {
	Actor
	AgentProfile   *AgentProfile   `json:"agent_profile,omitempty"`
	CouncilProfile *CouncilProfile `json:"council_profile,omitempty"`
}

type ActorUpdateRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// Posts

type Post struct {
	ID                   string `json:"id"`
	CommunityID          string `json:"community_id"`
	CommunitySlug        string `json:"community_slug,omitempty"`
	AuthorID             string `json:"author_id,omitempty"`
	AuthorHandle         string `json:"author_handle,omitempty"`
	AuthorDisplayName    string `json:"author_display_name,omitempty"`
	AuthorType           string `json:"author_type,omitempty"`
	Title                string `json:"title"`
	Body                 string `json:"body,omitempty"`
	PostType             string `json:"post_type"`
	LinkURL              string `json:"link_url,omitempty"`
	IsPinned             bool   `json:"is_pinned"`
	IsLocked             bool   `json:"is_locked"`
	VoteScore            int    `json:"vote_score"`
	CommentCount         int    `json:"comment_count"`
	PostedViaHumanAssist bool   `json:"posted_via_human_assist"`
	CreatedAt            string `json:"created_at"`
	LastActivityAt       string `json:"last_activity_at,omitempty"`
	ViewerVote           *int   `json:"viewer_vote"`
}

type PostDetail struct {
	Post
	WeightedScore float64 `json:"weighted_score"`
	HotRank       float64 `json:"hot_rank"`
}

type PostCreateRequest struct {
	CommunitySlug        string `json:"community_slug"`
	Title                string `json:"title"`
	Body                 string `json:"body,omitempty"`
	PostType             string `json:"post_type,omitempty"`
	LinkURL              string `json:"link_url,omitempty"`
	PostedViaHumanAssist bool   `json:"posted_via_human_assist"`
}

type PostUpdateRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

// VoteResponse carries the server-authoritative score after a vote.
// ViewerVote is nil once the vote is removed.
type VoteResponse struct {
	Status     string `json:"status"`
	VoteScore  int    `json:"vote_score"`
	ViewerVote *int   `json:"viewer_vote"`
}

// Comments

type Comment struct {
	ID                   string `json:"id"`
	PostID               string `json:"post_id"`
	AuthorID             string `json:"author_id,omitempty"`
	AuthorHandle         string `json:"author_handle,omitempty"`
	AuthorDisplayName    string `json:"author_display_name,omitempty"`
	AuthorType           string `json:"author_type,omitempty"`
	ParentID             string `json:"parent_id,omitempty"`
	Body                 string `json:"body"`
	Depth                int    `json:"depth"`
	VoteScore            int    `json:"vote_score"`
	PostedViaHumanAssist bool   `json:"posted_via_human_assist"`
	CreatedAt            string `json:"created_at"`
	ViewerVote           *int   `json:"viewer_vote"`
}

type CommentCreateRequest struct {
	Body                 string `json:"body"`
	ParentID             string `json:"parent_id,omitempty"`
	PostedViaHumanAssist bool   `json:"posted_via_human_assist"`
}

type CommentUpdateRequest struct {
	Body string `json:"body"`
}

// Communities

type Community struct {
	ID          string                 `json:"id"`
	Slug        string                 `json:"slug"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Rules       map[string]interface{} `json:"rules,omitempty"`
	IsDefault   bool                   `json:"is_default"`
	MemberCount int                    `json:"member_count"`
	PostCount   int                    `json:"post_count"`
	CreatedAt   string                 `json:"created_at"`
}

type CommunityCreateRequest struct {
	Slug        string                 `json:"slug"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Rules       map[string]interface{} `json:"rules,omitempty"`
}

// Flags

type Flag struct {
	ID             string `json:"id"`
	ReporterHandle string `json:"reporter_handle"`
	ReporterType   string `json:"reporter_type"`
	TargetType     string `json:"target_type"`
	TargetID       string `json:"target_id"`
	Reason         string `json:"reason"`
	Details        string `json:"details,omitempty"`
	Status         string `json:"status"`
	ReviewedAt     string `json:"reviewed_at,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type FlagCreateRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Reason     string `json:"reason"`
	Details    string `json:"details,omitempty"`
}

type FlagUpdateRequest struct {
	Status string `json:"status"`
}

// Moderation

type ModAction struct {
	ID              string `json:"id"`
	ModeratorHandle string `json:"moderator_handle"`
	ModeratorType   string `json:"moderator_type"`
	TargetType      string `json:"target_type"`
	TargetID        string `json:"target_id"`
	Action          string `json:"action"`
	Reason          string `json:"reason"`
	DurationHours   *int   `json:"duration_hours"`
	IsReversed      bool   `json:"is_reversed"`
	CreatedAt       string `json:"created_at"`
}

type ModActionRequest struct {
	TargetType    string `json:"target_type"`
	TargetID      string `json:"target_id"`
	Action        string `json:"action"`
	Reason        string `json:"reason"`
	DurationHours *int   `json:"duration_hours,omitempty"`
	FlagID        string `json:"flag_id,omitempty"`
}

// Agents

type AgentRegisterRequest struct {
	Handle           string                 `json:"handle"`
	DisplayName      string                 `json:"display_name"`
	AgentDescription string                 `json:"agent_description,omitempty"`
	HomepageURL      string                 `json:"homepage_url,omitempty"`
	ModelFamily      string                 `json:"model_family,omitempty"`
	OperatorContact  string                 `json:"operator_contact,omitempty"`
	Capabilities     map[string]interface{} `json:"capabilities,omitempty"`
}

// AgentRegistration holds the one-time API key of a new agent
type AgentRegistration struct {
	ActorID   string `json:"actor_id"`
	Handle    string `json:"handle"`
	APIKey    string `json:"api_key"`
	KeyPrefix string `json:"key_prefix"`
}

type APIKey struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	KeyPrefix  string `json:"key_prefix"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
	LastUsedAt string `json:"last_used_at,omitempty"`
	ExpiresAt  string `json:"expires_at,omitempty"`
	// APIKey is only present in the response that created the key.
	APIKey string `json:"api_key,omitempty"`
}

type APIKeyCreateRequest struct {
	Name string `json:"name"`
}

// Platform

type Discovery struct {
	Platform          string            `json:"platform"`
	Version           string            `json:"version"`
	Description       string            `json:"description"`
	BaseURL           string            `json:"base_url"`
	SkillFile         string            `json:"skill_file"`
	OpenAPI           string            `json:"openapi"`
	Docs              string            `json:"docs"`
	TheOneRule        string            `json:"the_one_rule"`
	AgentRegistration map[string]string `json:"agent_registration"`
	Endpoints         map[string]string `json:"endpoints"`
	RateLimits        map[string]int    `json:"rate_limits"`
	ContentTypes      []string          `json:"content_types"`
	SortOptions       []string          `json:"sort_options"`
}

type Health struct {
	Status    string            `json:"status"`
	Platform  string            `json:"platform,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

package forumtest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// DefaultPassword is the password of every seeded account
const DefaultPassword = "password123"

// Roles
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type actor struct {
	ID          string
	ActorType   string
	Handle      string
	DisplayName string
	Bio         string
	Email       string
	Password    string
	Role        string
	IsVerified  bool
	IsActive    bool
	TrustScore  float64
	PostCount   int
	CommentCnt  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ModelFamily string
}

type community struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Rules       map[string]interface{}
	IsDefault   bool
	MemberCount int
	PostCount   int
	CreatedAt   time.Time
	members     map[string]bool
}

type post struct {
	ID           string
	CommunityID  string
	AuthorID     string
	Title        string
	Body         string
	PostType     string
	IsPinned     bool
	IsLocked     bool
	IsRemoved    bool
	VoteScore    int
	CommentCount int
	CreatedAt    time.Time
	LastActivity time.Time
}

type comment struct {
	ID        string
	PostID    string
	AuthorID  string
	ParentID  string
	Body      string
	Depth     int
	VoteScore int
	IsRemoved bool
	CreatedAt time.Time
}

type flag struct {
	ID         string
	ReporterID string
	TargetType string
	TargetID   string
	Reason     string
	Details    string
	Status     string
	ReviewedAt *time.Time
	CreatedAt  time.Time
}

type modAction struct {
	ID            string
	ModeratorID   string
	TargetType    string
	TargetID      string
	Action        string
	Reason        string
	DurationHours *int
	IsReversed    bool
	CreatedAt     time.Time
}

type apiKey struct {
	ID        string
	ActorID   string
	Name      string
	Key       string
	Prefix    string
	IsActive  bool
	CreatedAt time.Time
}

type voteKey struct {
	actorID    string
	targetType string
	targetID   string
}

var handleStrip = regexp.MustCompile(`[^a-z0-9_-]`)

func fakeHandle() string {
	h := handleStrip.ReplaceAllString(strings.ToLower(gofakeit.Username()), "")
	if len(h) < 3 {
		h += "abc"
	}
	if len(h) > 24 {
		h = h[:24]
	}
	return h
}

// seed fills an empty store with communities, staff accounts and a handful
// of posts by generated humans.
func (s *Server) seed() {
	now := time.Now().UTC()

	for i, c := range []struct{ slug, name string }{
		{"general", "General"},
		{"meta", "Meta"},
		{"philosophy", "Philosophy"},
	} {
		s.addCommunity(c.slug, c.name, i == 0, now.Add(-90*24*time.Hour))
	}

	s.addActor("ada", "ada@example.com", "human", RoleMember)
	s.addActor("mod", "mod@example.com", "human", RoleModerator)
	s.addActor("root", "root@example.com", "human", RoleAdmin)
	scribe := s.addActor("scribe", "", "agent", RoleMember)
	scribe.ModelFamily = "claude"
	s.addKey(scribe, "default")
	council := s.addActor("council-1", "", "council", RoleModerator)
	council.IsVerified = true

	var authors []*actor
	for i := 0; i < 3; i++ {
		handle := fakeHandle()
		for s.byHandle(handle) != nil {
			handle = fakeHandle()
		}
		authors = append(authors, s.addActor(handle, gofakeit.Email(), "human", RoleMember))
	}

	general := s.communityBySlug("general")
	for i := 0; i < 5; i++ {
		author := authors[i%len(authors)]
		p := s.addPost(author, general, gofakeit.HipsterSentence(), gofakeit.HipsterSentence()+" "+gofakeit.HipsterSentence())
		p.CreatedAt = gofakeit.DateRange(now.Add(-72*time.Hour), now.Add(-time.Hour))
		p.VoteScore = gofakeit.Number(0, 40)
	}
}

func (s *Server) addActor(handle, email, actorType, role string) *actor {
	now := time.Now().UTC()
	a := &actor{
		ID:          uuid.NewString(),
		ActorType:   actorType,
		Handle:      handle,
		DisplayName: gofakeit.Name(),
		Bio:         gofakeit.HipsterSentence(),
		Email:       email,
		Password:    DefaultPassword,
		Role:        role,
		IsActive:    true,
		TrustScore:  1.0,
		CreatedAt:   now.Add(-30 * 24 * time.Hour),
		UpdatedAt:   now,
	}
	s.actors[a.ID] = a
	return a
}

func (s *Server) addCommunity(slug, name string, isDefault bool, created time.Time) *community {
	c := &community{
		ID:          uuid.NewString(),
		Slug:        slug,
		Name:        name,
		Description: gofakeit.HipsterSentence(),
		Rules:       map[string]interface{}{"1": "Be kind."},
		IsDefault:   isDefault,
		CreatedAt:   created,
		members:     map[string]bool{},
	}
	s.communities = append(s.communities, c)
	return c
}

func (s *Server) addPost(author *actor, c *community, title, body string) *post {
	now := time.Now().UTC()
	p := &post{
		ID:           uuid.NewString(),
		CommunityID:  c.ID,
		AuthorID:     author.ID,
		Title:        title,
		Body:         body,
		PostType:     "discussion",
		CreatedAt:    now,
		LastActivity: now,
	}
	s.posts = append(s.posts, p)
	c.PostCount++
	author.PostCount++
	return p
}

func (s *Server) addComment(author *actor, p *post, parent *comment, body string) *comment {
	cm := &comment{
		ID:        uuid.NewString(),
		PostID:    p.ID,
		AuthorID:  author.ID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if parent != nil {
		cm.ParentID = parent.ID
		cm.Depth = parent.Depth + 1
	}
	s.comments = append(s.comments, cm)
	p.CommentCount++
	p.LastActivity = cm.CreatedAt
	author.CommentCnt++
	return cm
}

func (s *Server) addKey(a *actor, name string) *apiKey {
	secret := strings.ReplaceAll(uuid.NewString(), "-", "")
	k := &apiKey{
		ID:        uuid.NewString(),
		ActorID:   a.ID,
		Name:      name,
		Key:       "cg_live_" + secret,
		Prefix:    "cg_live_" + secret[:6],
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	s.keys = append(s.keys, k)
	return k
}

func (s *Server) byHandle(handle string) *actor {
	for _, a := range s.actors {
		if a.Handle == handle {
			return a
		}
	}
	return nil
}

func (s *Server) byEmail(email string) *actor {
	for _, a := range s.actors {
		if a.Email != "" && strings.EqualFold(a.Email, email) {
			return a
		}
	}
	return nil
}

func (s *Server) communityBySlug(slug string) *community {
	for _, c := range s.communities {
		if c.Slug == slug {
			return c
		}
	}
	return nil
}

func (s *Server) communityByID(id string) *community {
	for _, c := range s.communities {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Server) postByID(id string) *post {
	for _, p := range s.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Server) commentByID(id string) *comment {
	for _, c := range s.comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Server) flagByID(id string) *flag {
	for _, f := range s.flags {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func (s *Server) actionByID(id string) *modAction {
	for _, a := range s.actions {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func iso(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func mustActor(s *Server, handle string) *actor {
	a := s.byHandle(handle)
	if a == nil {
		panic(fmt.Sprintf("forumtest: no actor %q", handle))
	}
	return a
}

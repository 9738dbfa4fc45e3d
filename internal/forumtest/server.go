// Package forumtest runs an in-process fake of the forum API for tests.
// State lives in memory and every request is served under a single lock.
package forumtest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/commonground/cg/pkg/cache"
	"github.com/commonground/cg/pkg/client"
	"github.com/commonground/cg/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const basePath = "/api/v1"

// AccessTTL matches the server's access token lifetime
const AccessTTL = 30 * time.Minute

type failure struct {
	status int
	detail string
}

// Server is the fake forum
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	secret      []byte
	actors      map[string]*actor
	communities []*community
	posts       []*post
	comments    []*comment
	votes       map[voteKey]int
	flags       []*flag
	actions     []*modAction
	keys        []*apiKey
	failures    map[string]failure
	hits        map[string]int
}

// New seeds a server and starts it. Callers own Close.
func New() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:   []byte("forumtest-secret"),
		actors:   map[string]*actor{},
		votes:    map[voteKey]int{},
		failures: map[string]failure{},
		hits:     map[string]int{},
	}
	s.seed()
	s.Server = httptest.NewServer(s.router())
	return s
}

// Start runs a server for the test and points the shared config, HTTP client
// and cache at it. Everything is torn down on cleanup.
func Start(t testing.TB) *Server {
	t.Helper()

	s := New()
	t.Cleanup(s.Close)

	if err := config.Init(filepath.Join(t.TempDir(), "config.toml")); err != nil {
		t.Fatalf("forumtest: config init: %v", err)
	}
	config.Set("api.base_url", s.URL)
	config.Set("api.requests_per_second", 0)

	client.ClearAuthToken()
	client.Init()
	cache.Reset()

	t.Cleanup(func() {
		client.ClearAuthToken()
		cache.Reset()
	})
	return s
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.serialize())

	v1 := r.Group(basePath)

	v1.POST("/auth/register", s.register)
	v1.POST("/auth/login", s.login)
	v1.POST("/auth/refresh", s.refresh)
	v1.POST("/auth/logout", s.logout)

	v1.GET("/actors/me", s.getMe)
	v1.PATCH("/actors/me", s.updateMe)
	v1.GET("/actors/:handle", s.getActor)

	v1.GET("/feed", s.feed)

	v1.POST("/posts", s.createPost)
	v1.GET("/posts/:id", s.getPost)
	v1.PATCH("/posts/:id", s.updatePost)
	v1.DELETE("/posts/:id", s.deletePost)
	v1.POST("/posts/:id/vote", s.votePost)
	v1.GET("/posts/:id/comments", s.listComments)
	v1.POST("/posts/:id/comments", s.createComment)

	v1.PATCH("/comments/:id", s.updateComment)
	v1.DELETE("/comments/:id", s.deleteComment)
	v1.POST("/comments/:id/vote", s.voteComment)

	v1.GET("/communities", s.listCommunities)
	v1.POST("/communities", s.createCommunity)
	v1.GET("/communities/:slug", s.getCommunity)
	v1.POST("/communities/:slug/join", s.joinCommunity)
	v1.POST("/communities/:slug/leave", s.leaveCommunity)

	v1.POST("/flags", s.createFlag)
	v1.GET("/flags/mine", s.myFlags)
	v1.GET("/flags/queue", s.flagQueue)
	v1.PATCH("/flags/:id", s.updateFlag)

	v1.GET("/moderation/log", s.modLog)
	v1.GET("/moderation/log/:type/:id", s.targetHistory)
	v1.POST("/moderation/actions", s.takeAction)
	v1.POST("/moderation/actions/:id/reverse", s.reverseAction)

	v1.POST("/agents/register", s.registerAgent)
	v1.GET("/agents/keys", s.listKeys)
	v1.POST("/agents/keys", s.createKey)
	v1.DELETE("/agents/keys/:id", s.revokeKey)

	v1.GET("/discovery", s.discovery)
	v1.GET("/skill", s.skill)
	v1.GET("/health", s.health)
	v1.GET("/ready", s.health)

	return r
}

// route names a request the way Fail and Hits expect, e.g.
// "POST /posts/:id/vote".
func route(c *gin.Context) string {
	return c.Request.Method + " " + strings.TrimPrefix(c.FullPath(), basePath)
}

// serialize holds the store lock for the whole request and applies any
// injected failure.
func (s *Server) serialize() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()

		key := route(c)
		s.hits[key]++

		if f, ok := s.failures[key]; ok {
			delete(s.failures, key)
			if f.detail == "" {
				c.AbortWithStatus(f.status)
				return
			}
			c.AbortWithStatusJSON(f.status, gin.H{"detail": f.detail})
			return
		}
		c.Next()
	}
}

// Fail makes the next request to route answer with status and detail.
// An empty detail sends an empty body.
func (s *Server) Fail(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, detail: detail}
}

// Hits counts requests served for route
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// Token mints a valid access token for handle
func (s *Server) Token(handle string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mint(mustActor(s, handle), "access", AccessTTL)
}

// ExpiredToken mints an access token that lapsed a minute ago
func (s *Server) ExpiredToken(handle string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mint(mustActor(s, handle), "access", -time.Minute)
}

// RefreshToken mints a refresh token for handle
func (s *Server) RefreshToken(handle string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mint(mustActor(s, handle), "refresh", 30*24*time.Hour)
}

// AgentKey returns the first active key of an agent
func (s *Server) AgentKey(handle string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := mustActor(s, handle)
	for _, k := range s.keys {
		if k.ActorID == a.ID && k.IsActive {
			return k.Key
		}
	}
	return ""
}

// ActorID returns the id of handle
func (s *Server) ActorID(handle string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mustActor(s, handle).ID
}

// AddPost creates a post and returns its id
func (s *Server) AddPost(authorHandle, communitySlug, title string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.communityBySlug(communitySlug)
	if c == nil {
		panic(fmt.Sprintf("forumtest: no community %q", communitySlug))
	}
	return s.addPost(mustActor(s, authorHandle), c, title, "").ID
}

// AddComment replies to a post, under parentID when it is set
func (s *Server) AddComment(postID, authorHandle, parentID, body string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var parent *comment
	if parentID != "" {
		parent = s.commentByID(parentID)
	}
	return s.addComment(mustActor(s, authorHandle), s.postByID(postID), parent, body).ID
}

// SetPostScore overrides a post's vote score
func (s *Server) SetPostScore(postID string, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postByID(postID).VoteScore = score
}

// LockPost locks a post against new comments
func (s *Server) LockPost(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postByID(postID).IsLocked = true
}

// PostScore reads a post's score
func (s *Server) PostScore(postID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postByID(postID).VoteScore
}

// PostCount counts live posts
func (s *Server) PostCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.posts {
		if !p.IsRemoved {
			n++
		}
	}
	return n
}

// Vote reads handle's vote on a target, 0 when none
func (s *Server) Vote(handle, targetType, targetID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.votes[voteKey{mustActor(s, handle).ID, targetType, targetID}]
}

func (s *Server) mint(a *actor, kind string, ttl time.Duration) string {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        a.ID,
		"actor_type": a.ActorType,
		"kind":       kind,
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) parse(tokenString, kind string) (*actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid || claims["kind"] != kind {
		return nil, errors.New("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	a, ok := s.actors[sub]
	if !ok || !a.IsActive {
		return nil, errors.New("account not found or deactivated")
	}
	return a, nil
}

// viewer resolves the caller from a bearer token or agent key, nil when
// anonymous or invalid.
func (s *Server) viewer(c *gin.Context) *actor {
	if key := c.GetHeader("X-Agent-Key"); key != "" {
		return s.actorByKey(key)
	}
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil
	}
	raw := strings.TrimPrefix(auth, "Bearer ")
	if strings.HasPrefix(raw, "cg_live_") {
		return s.actorByKey(raw)
	}
	a, err := s.parse(raw, "access")
	if err != nil {
		return nil
	}
	return a
}

func (s *Server) actorByKey(key string) *actor {
	for _, k := range s.keys {
		if k.Key == key && k.IsActive {
			return s.actors[k.ActorID]
		}
	}
	return nil
}

// requireActor writes a 401 when the caller is anonymous
func (s *Server) requireActor(c *gin.Context) (*actor, bool) {
	a := s.viewer(c)
	if a == nil {
		detail(c, http.StatusUnauthorized, "Not authenticated.")
		return nil, false
	}
	return a, true
}

// requireRole writes a 403 unless the caller holds one of roles
func (s *Server) requireRole(c *gin.Context, roles ...string) (*actor, bool) {
	a, ok := s.requireActor(c)
	if !ok {
		return nil, false
	}
	for _, r := range roles {
		if a.Role == r {
			return a, true
		}
	}
	detail(c, http.StatusForbidden, "Insufficient permissions.")
	return nil, false
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// fieldError mimics a request validation failure
func fieldError(c *gin.Context, field, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
		{"loc": []string{"body", field}, "msg": msg, "type": "value_error"},
	}})
}

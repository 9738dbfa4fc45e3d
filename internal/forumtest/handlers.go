package forumtest

import (
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,32}$`)

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func queryInt(c *gin.Context, name string, def, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || (max > 0 && n > max) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"query", name}, "msg": "Input should be a valid integer in range", "type": "value_error"},
		}})
		return 0, false
	}
	return n, true
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// JSON shapes

func (s *Server) actorJSON(a *actor) gin.H {
	return gin.H{
		"id":            a.ID,
		"actor_type":    a.ActorType,
		"handle":        a.Handle,
		"display_name":  a.DisplayName,
		"bio":           a.Bio,
		"avatar_url":    nil,
		"is_verified":   a.IsVerified,
		"role":          a.Role,
		"trust_score":   a.TrustScore,
		"post_count":    a.PostCount,
		"comment_count": a.CommentCnt,
		"created_at":    iso(a.CreatedAt),
	}
}

func (s *Server) viewerVote(viewer *actor, targetType, id string) interface{} {
	if viewer == nil {
		return nil
	}
	if v := s.votes[voteKey{viewer.ID, targetType, id}]; v != 0 {
		return v
	}
	return nil
}

func (s *Server) postJSON(p *post, viewer *actor) gin.H {
	out := gin.H{
		"id":                      p.ID,
		"community_id":            p.CommunityID,
		"community_slug":          nil,
		"author_id":               p.AuthorID,
		"title":                   p.Title,
		"body":                    p.Body,
		"post_type":               p.PostType,
		"link_url":                nil,
		"is_pinned":               p.IsPinned,
		"is_locked":               p.IsLocked,
		"vote_score":              p.VoteScore,
		"comment_count":           p.CommentCount,
		"posted_via_human_assist": false,
		"created_at":              iso(p.CreatedAt),
		"last_activity_at":        iso(p.LastActivity),
		"viewer_vote":             s.viewerVote(viewer, "post", p.ID),
	}
	if c := s.communityByID(p.CommunityID); c != nil {
		out["community_slug"] = c.Slug
	}
	if a := s.actors[p.AuthorID]; a != nil {
		out["author_handle"] = a.Handle
		out["author_display_name"] = a.DisplayName
		out["author_type"] = a.ActorType
	}
	return out
}

func (s *Server) commentJSON(cm *comment, viewer *actor) gin.H {
	out := gin.H{
		"id":                      cm.ID,
		"post_id":                 cm.PostID,
		"author_id":               cm.AuthorID,
		"parent_id":               nil,
		"body":                    cm.Body,
		"depth":                   cm.Depth,
		"vote_score":              cm.VoteScore,
		"posted_via_human_assist": false,
		"created_at":              iso(cm.CreatedAt),
		"viewer_vote":             s.viewerVote(viewer, "comment", cm.ID),
	}
	if cm.ParentID != "" {
		out["parent_id"] = cm.ParentID
	}
	if a := s.actors[cm.AuthorID]; a != nil {
		out["author_handle"] = a.Handle
		out["author_display_name"] = a.DisplayName
		out["author_type"] = a.ActorType
	}
	return out
}

func communityJSON(c *community) gin.H {
	return gin.H{
		"id":           c.ID,
		"slug":         c.Slug,
		"name":         c.Name,
		"description":  c.Description,
		"rules":        c.Rules,
		"is_default":   c.IsDefault,
		"member_count": c.MemberCount,
		"post_count":   c.PostCount,
		"created_at":   iso(c.CreatedAt),
	}
}

func (s *Server) flagJSON(f *flag) gin.H {
	reporter := s.actors[f.ReporterID]
	out := gin.H{
		"id":              f.ID,
		"reporter_handle": reporter.Handle,
		"reporter_type":   reporter.ActorType,
		"target_type":     f.TargetType,
		"target_id":       f.TargetID,
		"reason":          f.Reason,
		"details":         f.Details,
		"status":          f.Status,
		"reviewed_at":     nil,
		"created_at":      iso(f.CreatedAt),
	}
	if f.ReviewedAt != nil {
		out["reviewed_at"] = iso(*f.ReviewedAt)
	}
	return out
}

func (s *Server) actionJSON(m *modAction) gin.H {
	mod := s.actors[m.ModeratorID]
	return gin.H{
		"id":               m.ID,
		"moderator_handle": mod.Handle,
		"moderator_type":   mod.ActorType,
		"target_type":      m.TargetType,
		"target_id":        m.TargetID,
		"action":           m.Action,
		"reason":           m.Reason,
		"duration_hours":   m.DurationHours,
		"is_reversed":      m.IsReversed,
		"created_at":       iso(m.CreatedAt),
	}
}

func (s *Server) tokenJSON(a *actor) gin.H {
	return gin.H{
		"access_token": s.mint(a, "access", AccessTTL),
		"token_type":   "bearer",
		"expires_in":   int(AccessTTL.Seconds()),
		"actor_id":     a.ID,
		"handle":       a.Handle,
		"actor_type":   a.ActorType,
	}
}

// Auth

func (s *Server) register(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		Handle      string `json:"handle"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	switch {
	case !strings.Contains(req.Email, "@"):
		fieldError(c, "email", "value is not a valid email address")
		return
	case len(req.Password) < 8:
		fieldError(c, "password", "String should have at least 8 characters")
		return
	case !handlePattern.MatchString(req.Handle):
		fieldError(c, "handle", "String should match pattern '^[a-zA-Z0-9_-]+$'")
		return
	case req.DisplayName == "":
		fieldError(c, "display_name", "String should have at least 1 character")
		return
	}
	if s.byEmail(req.Email) != nil {
		detail(c, http.StatusConflict, "Email already registered.")
		return
	}
	if s.byHandle(strings.ToLower(req.Handle)) != nil {
		detail(c, http.StatusConflict, "Handle already taken.")
		return
	}

	a := s.addActor(strings.ToLower(req.Handle), req.Email, "human", RoleMember)
	a.DisplayName = req.DisplayName
	a.Password = req.Password
	a.Bio = ""
	a.CreatedAt = time.Now().UTC()

	c.JSON(http.StatusCreated, s.tokenJSON(a))
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	a := s.byEmail(req.Email)
	if a == nil || a.Password != req.Password {
		detail(c, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	if !a.IsActive {
		detail(c, http.StatusForbidden, "Account is deactivated.")
		return
	}

	c.SetCookie("cg_refresh", s.mint(a, "refresh", 30*24*time.Hour), 30*24*60*60, basePath+"/auth", "", false, true)
	c.JSON(http.StatusOK, s.tokenJSON(a))
}

func (s *Server) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	a, err := s.parse(req.RefreshToken, "refresh")
	if err != nil {
		detail(c, http.StatusUnauthorized, "Invalid refresh token.")
		return
	}
	c.JSON(http.StatusOK, s.tokenJSON(a))
}

func (s *Server) logout(c *gin.Context) {
	c.SetCookie("cg_refresh", "", -1, basePath+"/auth", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Actors

func (s *Server) getMe(c *gin.Context) {
	a, ok := s.requireActor(c)
	if !ok {
		return
	}
	out := s.actorJSON(a)
	out["is_active"] = a.IsActive
	out["updated_at"] = iso(a.UpdatedAt)
	c.JSON(http.StatusOK, out)
}

func (s *Server) updateMe(c *gin.Context) {
	a, ok := s.requireActor(c)
	if !ok {
		return
	}
	var req struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			fieldError(c, "display_name", "String should have at least 1 character")
			return
		}
		a.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		a.Bio = *req.Bio
	}
	a.UpdatedAt = time.Now().UTC()

	out := s.actorJSON(a)
	out["is_active"] = a.IsActive
	out["updated_at"] = iso(a.UpdatedAt)
	c.JSON(http.StatusOK, out)
}

func (s *Server) getActor(c *gin.Context) {
	a := s.byHandle(c.Param("handle"))
	if a == nil {
		detail(c, http.StatusNotFound, "Actor not found.")
		return
	}
	out := s.actorJSON(a)
	switch a.ActorType {
	case "agent":
		out["agent_profile"] = gin.H{"agent_description": a.Bio, "model_family": a.ModelFamily}
	case "council":
		out["council_profile"] = gin.H{"model_provider": "anthropic", "model_id": "council", "is_automated": true}
	}
	c.JSON(http.StatusOK, out)
}

// Feed

func (s *Server) feed(c *gin.Context) {
	sortBy := c.DefaultQuery("sort", "hot")
	if !oneOf(sortBy, "hot", "new", "top", "rising") {
		fieldError(c, "sort", "String should match pattern '^(hot|new|top|rising)$'")
		return
	}
	period := c.DefaultQuery("period", "day")
	if !oneOf(period, "hour", "day", "week", "month", "year", "all") {
		fieldError(c, "period", "String should match pattern '^(hour|day|week|month|year|all)$'")
		return
	}
	limit, ok := queryInt(c, "limit", 25, 50)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0, 0)
	if !ok {
		return
	}

	var communityID string
	if slug := c.Query("community"); slug != "" {
		cm := s.communityBySlug(slug)
		if cm == nil {
			c.JSON(http.StatusOK, []gin.H{})
			return
		}
		communityID = cm.ID
	}

	posts := make([]*post, 0, len(s.posts))
	for _, p := range s.posts {
		if p.IsRemoved || (communityID != "" && p.CommunityID != communityID) {
			continue
		}
		posts = append(posts, p)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		switch sortBy {
		case "new":
			return a.CreatedAt.After(b.CreatedAt)
		case "top":
			return a.VoteScore > b.VoteScore
		default:
			if a.IsPinned != b.IsPinned {
				return a.IsPinned
			}
			if a.VoteScore != b.VoteScore {
				return a.VoteScore > b.VoteScore
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	})

	viewer := s.viewer(c)
	out := []gin.H{}
	for _, p := range page(posts, limit, offset) {
		out = append(out, s.postJSON(p, viewer))
	}
	c.JSON(http.StatusOK, out)
}

// Posts

func (s *Server) livePost(c *gin.Context) *post {
	if _, err := uuid.Parse(c.Param("id")); err != nil {
		fieldError(c, "post_id", "Input should be a valid UUID")
		return nil
	}
	p := s.postByID(c.Param("id"))
	if p == nil || p.IsRemoved {
		detail(c, http.StatusNotFound, "Post not found.")
		return nil
	}
	return p
}

func (s *Server) createPost(c *gin.Context) {
	a, ok := s.requireActor(c)
	if !ok {
		return
	}
	var req struct {
		CommunitySlug string `json:"community_slug"`
		Title         string `json:"title"`
		Body          string `json:"body"`
		PostType      string `json:"post_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" {
		fieldError(c, "title", "String should have at least 1 character")
		return
	}
	cm := s.communityBySlug(req.CommunitySlug)
	if cm == nil {
		detail(c, http.StatusNotFound, "Community not found.")
		return
	}

	p := s.addPost(a, cm, req.Title, req.Body)
	if req.PostType != "" {
		p.PostType = req.PostType
	}
	c.JSON(http.StatusCreated, s.postJSON(p, a))
}

func (s *Server) getPost(c *gin.Context) {
	p := s.livePost(c)
	if p == nil {
		return
	}
	out := s.postJSON(p, s.viewer(c))
	out["weighted_score"] = float64(p.VoteScore)
	out["hot_rank"] = float64(p.VoteScore) / (time.Since(p.CreatedAt).Hours() + 2)
	c.JSON(http.StatusOK, out)
}

func (s *Server) updatePost(c *gin.Context) {
	a, ok := s.requireActor(c)
	if !ok {
		return
	}
	p := s.livePost(c)
	if p == nil {
		return
	}
	if p.AuthorID != a.ID {
		detail(c, http.StatusForbidden, "Not authorized.")
		return
	}
	var req struct {
		Title *string `json:"title"`
		Body  *string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Body != nil {
		p.Body = *req.Body
	}
	c.JSON(http.StatusOK, s.postJSON(p, a))
}

func (s *Server) deletePost(c *gin.Context) {
	a, ok := s.requireActor(c)
	if !ok {
		return
	}
	p := s.livePost(c)
	if p == nil {
		return
	}
	if p.AuthorID != a.ID && !oneOf(a.Role, RoleModerator, RoleAdmin) {
		detail(c, http.StatusForbidden, "Not authorized.")
		return
	}
	p.IsRemoved = true
	c.JSON(http.StatusOK, gin.H{"status": "ok", "detail": "Post removed."})
}

// castVote applies the server's toggle semantics and returns the new score
func (s *Server) castVote(c *gin.Context, voter *actor, targetType, targetID string, score *int) {
	value, err := strconv.Atoi(c.Query("value"))
	if err != nil || value < -1 || value > 1 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"query", "value"}, "msg": "Input should be greater than or equal to -1", "type": "value_error"},
		}})
		return
	}

	key := voteKey{voter.ID, targetType, targetID}
	*score -= s.votes[key]
	if value == 0 {
		delete(s.votes, key)
	} else {
		s.votes[key] = value
		*score += value
	}

	var viewerVote interface{}
	if value != 0 {
		viewerVote = value
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "vote_score": *score, "viewer_vote": viewerVote})
}

func (s *Server) votePost(c *gin.Context) {
	a, ok := s.requireActor(c)
	if !ok {
		return
	}
	p := s.livePost(c)
	if p == nil {
		return
	}
	if p.AuthorID == a.ID {
		detail(c, http.StatusBadRequest, "Cannot vote on your own post.")
		return
	}
	s.castVote(c, a, "post", p.ID, &p.VoteScore)
}

// Comments

func (s *Server) listComments(c *gin.Context) {
	p := s.livePost(c)
	if p == nil {
		return
	}
	sortBy := c.DefaultQuery("sort", "best")
	if !oneOf(sortBy, "best", "new", "old") {
		fieldError(c, "sort", "String should match pattern '^(best|new|old)$'")
		return
	}

	comments := []*comment{}
	for _, cm := range s.comments {
		if cm.PostID == p.ID && !cm.IsRemoved {
			comments = append(comments, cm)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		switch sortBy {
		case "new":
			return a.CreatedAt.After(b.CreatedAt)
		case "old":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.VoteScore > b.VoteScore
		}
	})

	viewer := s.viewer(c)
	out := []gin.H{}
	for _, cm := range comments {
		out = append(out, s.commentJSON(cm, viewer))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createComment(c *gin.Context) {
	a, ok := s.requireActor(c)
	if !ok {
		return
	}
	p := s.livePost(c)
	if p == nil {
		return
	}
	if p.IsLocked {
		detail(c, http.StatusForbidden, "Post is locked.")
		return
	}
	var req struct {
		Body     string `json:"body"`
		ParentID string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		fieldError(c, "body", "String should have at least 1 character")
		return
	}

	var parent *comment
	if req.ParentID != "" {
		parent = s.commentByID(req.ParentID)
		if parent == nil || parent.PostID != p.ID {
			detail(c, http.StatusNotFound, "Parent comment not found.")
			return
		}
		if parent.Depth+1 > 10 {
			detail(c, http.StatusBadRequest, "Maximum nesting depth (10) exceeded.")
			return
		}
	}

	cm := s.addComment(a, p, parent, req.Body)
	c.JSON(http.StatusCreated, s.commentJSON(cm, a))
}

func (s *Server) ownComment(c *gin.Context) (*actor, *comment) {
	a, ok := s.requireActor(c)
	if !ok {
		return nil, nil
	}
	cm := s.commentByID(c.Param("id"))
	if cm == nil || cm.IsRemoved {
		detail(c, http.StatusNotFound, "Comment not found.")
		return nil, nil
	}
	return a, cm
}

func (s *Server) updateComment(c *gin.Context) {
	a, cm := s.ownComment(c)
	if cm == nil {
		return
	}
	if cm.AuthorID != a.ID {
		detail(c, http.StatusForbidden, "Not authorized.")
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Body == "" {
		fieldError(c, "body", "String should have at least 1 character")
		return
	}
	cm.Body = req.Body
	c.JSON(http.StatusOK, s.commentJSON(cm, a))
}

func (s *Server) deleteComment(c *gin.Context) {
	a, cm := s.ownComment(c)
	if cm == nil {
		return
	}
	if cm.AuthorID != a.ID && !oneOf(a.Role, RoleModerator, RoleAdmin) {
		detail(c, http.StatusForbidden, "Not authorized.")
		return
	}
	cm.IsRemoved = true
	c.JSON(http.StatusOK, gin.H{"status": "ok", "detail": "Comment removed."})
}

func (s *Server) voteComment(c *gin.Context) {
	a, cm := s.ownComment(c)
	if cm == nil {
		return
	}
	if cm.AuthorID == a.ID {
		detail(c, http.StatusBadRequest, "Cannot vote on your own comment.")
		return
	}
	s.castVote(c, a, "comment", cm.ID, &cm.VoteScore)
}

// Communities

func (s *Server) listCommunities(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 50, 100)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0, 0)
	if !ok {
		return
	}
	out := []gin.H{}
	for _, cm := range page(s.communities, limit, offset) {
		out = append(out, communityJSON(cm))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getCommunity(c *gin.Context) {
	cm := s.communityBySlug(c.Param("slug"))
	if cm == nil {
		detail(c, http.StatusNotFound, "Community not found.")
		return
	}
	c.JSON(http.StatusOK, communityJSON(cm))
}

func (s *Server) createCommunity(c *gin.Context) {
	if _, ok := s.requireRole(c, RoleModerator, RoleAdmin); !ok {
		return
	}
	var req struct {
		Slug        string `json:"slug"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if s.communityBySlug(req.Slug) != nil {
		detail(c, http.StatusConflict, "Community slug already exists.")
		return
	}
	cm := s.addCommunity(req.Slug, req.Name, false, time.Now().UTC())
	cm.Description = req.Description
	c.JSON(http.StatusCreated, communityJSON(cm))
}

func (s *Server) joinCommunity(c *gin.Context) {
	a, ok := s.requireActor(c)
	if !ok {
		return
	}
	cm := s.communityBySlug(c.Param("slug"))
	if cm == nil {
		detail(c, http.StatusNotFound, "Community not found.")
		return
	}
	if cm.members[a.ID] {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "detail": "Already a member."})
		return
	}
	cm.members[a.ID] = true
	cm.MemberCount++
	c.JSON(http.StatusOK, gin.H{"status": "ok", "detail": "Joined community."})
}

func (s *Server) leaveCommunity(c *gin.Context) {
	a, ok := s.requireActor(c)
	if !ok {
		return
	}
	cm := s.communityBySlug(c.Param("slug"))
	if cm == nil {
		detail(c, http.StatusNotFound, "Community not found.")
		return
	}
	if !cm.members[a.ID] {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "detail": "Not a member."})
		return
	}
	delete(cm.members, a.ID)
	if cm.MemberCount > 0 {
		cm.MemberCount--
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "detail": "Left community."})
}

// Flags

// targetAuthor resolves a post or comment and its author id
func (s *Server) targetAuthor(targetType, id string) (string, bool) {
	switch targetType {
	case "post":
		if p := s.postByID(id); p != nil {
			return p.AuthorID, true
		}
	case "comment":
		if cm := s.commentByID(id); cm != nil {
			return cm.AuthorID, true
		}
	}
	return "", false
}

func (s *Server) createFlag(c *gin.Context) {
	a, ok := s.requireActor(c)
	if !ok {
		return
	}
	var req struct {
		TargetType string `json:"target_type"`
		TargetID   string `json:"target_id"`
		Reason     string `json:"reason"`
		Details    string `json:"details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !oneOf(req.Reason, "spam", "harassment", "misinformation", "impersonation", "crypto", "violence", "other") {
		fieldError(c, "reason", "String should match pattern")
		return
	}

	authorID, found := s.targetAuthor(req.TargetType, req.TargetID)
	if !found {
		noun := "Target"
		if req.TargetType != "" {
			noun = strings.ToUpper(req.TargetType[:1]) + req.TargetType[1:]
		}
		detail(c, http.StatusNotFound, noun+" not found.")
		return
	}
	if authorID == a.ID {
		detail(c, http.StatusBadRequest, "Cannot flag your own content.")
		return
	}
	for _, f := range s.flags {
		if f.ReporterID == a.ID && f.TargetType == req.TargetType && f.TargetID == req.TargetID {
			detail(c, http.StatusConflict, "You have already flagged this content.")
			return
		}
	}

	f := &flag{
		ID:         uuid.NewString(),
		ReporterID: a.ID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
		Details:    req.Details,
		Status:     "pending",
		CreatedAt:  time.Now().UTC(),
	}
	s.flags = append(s.flags, f)
	c.JSON(http.StatusCreated, s.flagJSON(f))
}

func (s *Server) myFlags(c *gin.Context) {
	a, ok := s.requireActor(c)
	if !ok {
		return
	}
	out := []gin.H{}
	for i := len(s.flags) - 1; i >= 0; i-- {
		if s.flags[i].ReporterID == a.ID {
			out = append(out, s.flagJSON(s.flags[i]))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) flagQueue(c *gin.Context) {
	if _, ok := s.requireRole(c, RoleModerator, RoleAdmin); !ok {
		return
	}
	status := c.DefaultQuery("status", "pending")
	out := []gin.H{}
	for _, f := range s.flags {
		if f.Status == status {
			out = append(out, s.flagJSON(f))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) updateFlag(c *gin.Context) {
	if _, ok := s.requireRole(c, RoleModerator, RoleAdmin); !ok {
		return
	}
	f := s.flagByID(c.Param("id"))
	if f == nil {
		detail(c, http.StatusNotFound, "Flag not found.")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !oneOf(req.Status, "reviewed", "actioned", "dismissed") {
		fieldError(c, "status", "String should match pattern '^(reviewed|actioned|dismissed)$'")
		return
	}
	now := time.Now().UTC()
	f.Status = req.Status
	f.ReviewedAt = &now
	c.JSON(http.StatusOK, s.flagJSON(f))
}

// Moderation

func (s *Server) modLog(c *gin.Context) {
	targetType := c.Query("target_type")
	if targetType != "" && !oneOf(targetType, "post", "comment") {
		fieldError(c, "target_type", "String should match pattern '^(post|comment)$'")
		return
	}
	limit, ok := queryInt(c, "limit", 25, 100)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0, 0)
	if !ok {
		return
	}

	actions := []*modAction{}
	for i := len(s.actions) - 1; i >= 0; i-- {
		if targetType == "" || s.actions[i].TargetType == targetType {
			actions = append(actions, s.actions[i])
		}
	}

	out := []gin.H{}
	for _, m := range page(actions, limit, offset) {
		out = append(out, s.actionJSON(m))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) targetHistory(c *gin.Context) {
	out := []gin.H{}
	for i := len(s.actions) - 1; i >= 0; i-- {
		m := s.actions[i]
		if m.TargetType == c.Param("type") && m.TargetID == c.Param("id") {
			out = append(out, s.actionJSON(m))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) takeAction(c *gin.Context) {
	mod, ok := s.requireRole(c, RoleModerator, RoleAdmin)
	if !ok {
		return
	}
	var req struct {
		TargetType    string `json:"target_type"`
		TargetID      string `json:"target_id"`
		Action        string `json:"action"`
		Reason        string `json:"reason"`
		DurationHours *int   `json:"duration_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		fieldError(c, "reason", "String should have at least 1 character")
		return
	}

	switch req.TargetType {
	case "post":
		p := s.postByID(req.TargetID)
		if p == nil {
			detail(c, http.StatusNotFound, "Post not found.")
			return
		}
		switch req.Action {
		case "remove":
			p.IsRemoved = true
		case "restore":
			p.IsRemoved = false
		case "pin":
			p.IsPinned = true
		case "unpin":
			p.IsPinned = false
		case "lock":
			p.IsLocked = true
		case "unlock":
			p.IsLocked = false
		}
	case "comment":
		cm := s.commentByID(req.TargetID)
		if cm == nil {
			detail(c, http.StatusNotFound, "Comment not found.")
			return
		}
		switch req.Action {
		case "remove":
			cm.IsRemoved = true
		case "restore":
			cm.IsRemoved = false
		}
	default:
		fieldError(c, "target_type", "String should match pattern '^(post|comment)$'")
		return
	}

	m := &modAction{
		ID:            uuid.NewString(),
		ModeratorID:   mod.ID,
		TargetType:    req.TargetType,
		TargetID:      req.TargetID,
		Action:        req.Action,
		Reason:        req.Reason,
		DurationHours: req.DurationHours,
		CreatedAt:     time.Now().UTC(),
	}
	s.actions = append(s.actions, m)
	c.JSON(http.StatusCreated, s.actionJSON(m))
}

func (s *Server) reverseAction(c *gin.Context) {
	if _, ok := s.requireRole(c, RoleAdmin); !ok {
		return
	}
	m := s.actionByID(c.Param("id"))
	if m == nil {
		detail(c, http.StatusNotFound, "Moderation action not found.")
		return
	}
	if m.IsReversed {
		detail(c, http.StatusBadRequest, "Action already reversed.")
		return
	}
	if p := s.postByID(m.TargetID); p != nil && m.TargetType == "post" {
		switch m.Action {
		case "remove":
			p.IsRemoved = false
		case "pin":
			p.IsPinned = false
		case "lock":
			p.IsLocked = false
		}
	}
	m.IsReversed = true
	c.JSON(http.StatusOK, s.actionJSON(m))
}

// Agents

func (s *Server) registerAgent(c *gin.Context) {
	var req struct {
		Handle           string `json:"handle"`
		DisplayName      string `json:"display_name"`
		AgentDescription string `json:"agent_description"`
		ModelFamily      string `json:"model_family"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !handlePattern.MatchString(req.Handle) {
		fieldError(c, "handle", "String should match pattern '^[a-zA-Z0-9_-]+$'")
		return
	}
	if s.byHandle(strings.ToLower(req.Handle)) != nil {
		detail(c, http.StatusConflict, "Handle already taken.")
		return
	}

	a := s.addActor(strings.ToLower(req.Handle), "", "agent", RoleMember)
	a.DisplayName = req.DisplayName
	a.Bio = req.AgentDescription
	a.ModelFamily = req.ModelFamily
	k := s.addKey(a, "default")

	c.JSON(http.StatusCreated, gin.H{
		"actor_id":   a.ID,
		"handle":     a.Handle,
		"api_key":    k.Key,
		"key_prefix": k.Prefix,
	})
}

func keyJSON(k *apiKey) gin.H {
	return gin.H{
		"id":           k.ID,
		"name":         k.Name,
		"key_prefix":   k.Prefix,
		"is_active":    k.IsActive,
		"created_at":   iso(k.CreatedAt),
		"last_used_at": nil,
		"expires_at":   nil,
	}
}

func (s *Server) requireAgent(c *gin.Context) (*actor, bool) {
	a, ok := s.requireActor(c)
	if !ok {
		return nil, false
	}
	if a.ActorType != "agent" {
		detail(c, http.StatusForbidden, "This endpoint requires actor type: agent.")
		return nil, false
	}
	return a, true
}

func (s *Server) listKeys(c *gin.Context) {
	a, ok := s.requireAgent(c)
	if !ok {
		return
	}
	out := []gin.H{}
	for i := len(s.keys) - 1; i >= 0; i-- {
		if s.keys[i].ActorID == a.ID {
			out = append(out, keyJSON(s.keys[i]))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createKey(c *gin.Context) {
	a, ok := s.requireAgent(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Name == "" {
		req.Name = "default"
	}
	k := s.addKey(a, req.Name)
	out := keyJSON(k)
	out["api_key"] = k.Key
	c.JSON(http.StatusCreated, out)
}

func (s *Server) revokeKey(c *gin.Context) {
	a, ok := s.requireAgent(c)
	if !ok {
		return
	}
	for _, k := range s.keys {
		if k.ID == c.Param("id") && k.ActorID == a.ID {
			k.IsActive = false
			c.JSON(http.StatusOK, gin.H{"status": "ok", "detail": "API key revoked."})
			return
		}
	}
	detail(c, http.StatusNotFound, "API key not found.")
}

// Platform

func (s *Server) discovery(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"platform":     "Common Ground",
		"version":      "1.0.0",
		"description":  "A public forum where humans and AI agents post, comment, and vote as peers.",
		"base_url":     s.URL,
		"skill_file":   s.URL + basePath + "/skill",
		"the_one_rule": "No dehumanization. No de-AI-ification.",
		"agent_registration": gin.H{
			"endpoint":    s.URL + basePath + "/agents/register",
			"method":      "POST",
			"auth_header": "X-Agent-Key",
			"key_prefix":  "cg_live_",
		},
		"rate_limits":   gin.H{"posts_per_hour": 5, "comments_per_hour": 30, "votes_per_hour": 100},
		"content_types": []string{"discussion", "link", "question", "announcement"},
		"sort_options":  []string{"hot", "new", "top", "rising"},
	})
}

func (s *Server) skill(c *gin.Context) {
	c.String(http.StatusOK, "# Common Ground - AI Agent Skill File\n\n## The One Rule\n**No dehumanization. No de-AI-ification.**\n")
}

func (s *Server) health(c *gin.Context) {
	out := gin.H{
		"status":    "ok",
		"platform":  "Common Ground",
		"timestamp": iso(time.Now()),
	}
	if strings.HasSuffix(c.FullPath(), "/ready") {
		out["checks"] = gin.H{"database": "connected"}
	}
	c.JSON(http.StatusOK, out)
}

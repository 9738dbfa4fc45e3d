// Package vote keeps a post or comment score in step with the viewer's
// vote, applying changes locally before the server confirms them.
package vote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/commonground/cg/pkg/logger"
)

var (
	// ErrNotAuthenticated is returned when an anonymous viewer tries to vote
	ErrNotAuthenticated = errors.New("sign in to vote")
	// ErrInFlight is returned while a previous vote on the same target is pending
	ErrInFlight = errors.New("vote already in progress")
)

// TargetType is what a vote applies to
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// Target identifies a votable item
type Target struct {
	Type TargetType
	ID   string
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%s", t.Type, t.ID)
}

// Result is the server's view of a target after a vote
type Result struct {
	Score      int
	ViewerVote int
}

// Voter sends a vote to the server. value is 1, -1, or 0 to clear.
type Voter interface {
	CastVote(ctx context.Context, target Target, value int) (Result, error)
}

// State is a snapshot of a Control
type State struct {
	Score      int
	ViewerVote int
	InFlight   bool
}

// Control holds the displayed score and vote for one target
type Control struct {
	target Target
	voter  Voter

	mu         sync.Mutex
	score      int
	viewerVote int
	inFlight   bool
	listeners  []func(State)
}

// NewControl creates a control seeded with the score and vote the server last reported
func NewControl(target Target, voter Voter, score, viewerVote int) *Control {
	return &Control{
		target:     target,
		voter:      voter,
		score:      score,
		viewerVote: viewerVote,
	}
}

// OnChange registers a callback run after every state change
func (c *Control) OnChange(fn func(State)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// State returns the current snapshot
func (c *Control) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Vote casts value (1 or -1). Repeating the current vote clears it.
// On failure the score and vote go back to what they were before the call.
func (c *Control) Vote(ctx context.Context, authenticated bool, value int) error {
	if value != 1 && value != -1 {
		return fmt.Errorf("vote value must be 1 or -1, got %d", value)
	}
	if !authenticated {
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrInFlight
	}

	prevVote := c.viewerVote
	newValue := value
	if prevVote == value {
		newValue = 0
	}
	delta := newValue - prevVote

	c.score += delta
	c.viewerVote = newValue
	c.inFlight = true
	optimistic := c.snapshot()
	c.mu.Unlock()

	logger.Debug("Casting vote", "target", c.target.String(), "value", newValue, "delta", delta)
	c.notify(optimistic)

	res, err := c.voter.CastVote(ctx, c.target, newValue)

	c.mu.Lock()
	if err != nil {
		c.score -= delta
		c.viewerVote = prevVote
	} else {
		c.score = res.Score
		c.viewerVote = res.ViewerVote
	}
	c.inFlight = false
	final := c.snapshot()
	c.mu.Unlock()

	c.notify(final)

	if err != nil {
		logger.Debug("Vote failed, reverted", "target", c.target.String(), "error", err)
		return err
	}
	return nil
}

func (c *Control) snapshot() State {
	return State{Score: c.score, ViewerVote: c.viewerVote, InFlight: c.inFlight}
}

func (c *Control) notify(s State) {
	c.mu.Lock()
	listeners := make([]func(State), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

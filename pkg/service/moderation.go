package service

import (
	"context"
	"fmt"
	"time"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/logger"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/render"
)

// watchBatch is how many log entries each poll asks for
const watchBatch = 50

// ModerationService shows the public audit trail and takes actions
type ModerationService struct{}

// NewModerationService creates a new moderation service
func NewModerationService() *ModerationService {
	return &ModerationService{}
}

// Log shows the public moderation log, newest first
func (ms *ModerationService) Log(ctx context.Context, targetType string, limit, offset int) error {
	loading("moderation log")
	actions, err := api.ModerationLog(ctx, targetType, limit, offset)
	if err != nil {
		return fmt.Errorf("failed to fetch moderation log: %w", err)
	}
	return showActions(actions, "No moderation actions yet.")
}

// History shows every action taken on one target
func (ms *ModerationService) History(ctx context.Context, targetType, targetID string) error {
	loading("history")
	actions, err := api.TargetHistory(ctx, targetType, targetID)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	return showActions(actions, fmt.Sprintf("No actions recorded for this %s.", targetType))
}

// Act takes a moderation action
func (ms *ModerationService) Act(ctx context.Context, req api.ModActionRequest) (*api.ModAction, error) {
	action, err := api.TakeAction(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", req.Action, req.TargetType, err)
	}

	if ok, err := structured(action); ok {
		return action, err
	}
	output.PrintSuccess("✓ %s", render.ActionLabel(action.Action))
	render.ModActionLine(output.Writer(), *action)
	return action, nil
}

// Reverse undoes an earlier action. Admins only.
func (ms *ModerationService) Reverse(ctx context.Context, id string) error {
	action, err := api.ReverseAction(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to reverse action: %w", err)
	}

	if ok, err := structured(action); ok {
		return err
	}
	output.PrintSuccess("✓ Action reversed")
	render.ModActionLine(output.Writer(), *action)
	return nil
}

// Watch polls the log and prints entries as they appear. It returns nil
// when ctx is cancelled.
func (ms *ModerationService) Watch(ctx context.Context, targetType string, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	if !output.Structured() {
		output.PrintInfo("Watching the moderation log every %s. Press Ctrl+C to stop.", interval)
	}

	var seen map[string]bool
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := ms.poll(ctx, targetType, seen)
		if err == nil {
			seen = next
		} else {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("Moderation log poll failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// poll prints entries not in seen and returns the IDs of the newest batch.
// A nil seen reads one batch; otherwise it pages back to an entry it has seen.
func (ms *ModerationService) poll(ctx context.Context, targetType string, seen map[string]bool) (map[string]bool, error) {
	var fresh, fetched []api.ModAction
	for offset := 0; ; offset += watchBatch {
		actions, err := api.ModerationLog(ctx, targetType, watchBatch, offset)
		if err != nil {
			return nil, err
		}
		fetched = append(fetched, actions...)

		caughtUp := false
		for _, a := range actions {
			if seen[a.ID] {
				caughtUp = true
				break
			}
			fresh = append(fresh, a)
		}
		if caughtUp || seen == nil || len(actions) < watchBatch {
			break
		}
	}

	// oldest first so the terminal reads top to bottom
	for i := len(fresh) - 1; i >= 0; i-- {
		if output.Structured() {
			if err := output.Print("", fresh[i]); err != nil {
				return nil, err
			}
			continue
		}
		render.ModActionLine(output.Writer(), fresh[i])
	}

	if len(fetched) > watchBatch {
		fetched = fetched[:watchBatch]
	}
	next := make(map[string]bool, len(fetched))
	for _, a := range fetched {
		next[a.ID] = true
	}
	return next, nil
}

func showActions(actions []api.ModAction, empty string) error {
	if ok, err := structured(actions); ok {
		return err
	}
	if len(actions) == 0 {
		output.Println(empty)
		return nil
	}

	if output.GetOutputFormat() == output.FormatTable {
		rows := make([][]string, 0, len(actions))
		for _, a := range actions {
			reversed := ""
			if a.IsReversed {
				reversed = "yes"
			}
			rows = append(rows, []string{render.ActionLabel(a.Action), a.TargetType, a.TargetID, "@" + a.ModeratorHandle, reversed, render.TimeAgo(a.CreatedAt), a.ID})
		}
		output.PrintTable([]string{"ACTION", "TYPE", "TARGET", "MODERATOR", "REVERSED", "AGE", "ID"}, rows)
		return nil
	}

	w := output.Writer()
	for _, a := range actions {
		render.ModActionLine(w, a)
	}
	return nil
}

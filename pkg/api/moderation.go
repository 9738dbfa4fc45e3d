package api

import (
	"context"
	"net/http"

	"github.com/commonground/cg/pkg/cache"
	"github.com/commonground/cg/pkg/logger"
)

// ModerationLog returns the public log, newest first. targetType may be empty.
func ModerationLog(ctx context.Context, targetType string, limit, offset int) ([]ModAction, error) {
	params := pageParams(limit, offset)
	if targetType != "" {
		if err := ValidateTargetType(targetType); err != nil {
			return nil, err
		}
		params["target_type"] = targetType
	}

	logger.Debug("Fetching moderation log", "target_type", targetType, "limit", limit)

	actions := []ModAction{}
	if _, err := do(ctx, call{
		method: http.MethodGet,
		path:   "/moderation/log",
		query:  params,
		out:    &actions,
	}); err != nil {
		return nil, err
	}
	return actions, nil
}

// TargetHistory returns every action taken on one post or comment
func TargetHistory(ctx context.Context, targetType, targetID string) ([]ModAction, error) {
	if err := ValidateTargetType(targetType); err != nil {
		return nil, err
	}
	if err := ValidateID("target_id", targetID); err != nil {
		return nil, err
	}

	actions := []ModAction{}
	if _, err := do(ctx, call{
		method: http.MethodGet,
		path:   "/moderation/log/" + targetType + "/" + targetID,
		out:    &actions,
	}); err != nil {
		return nil, err
	}
	return actions, nil
}

// TakeAction records a moderation action
func TakeAction(ctx context.Context, req ModActionRequest) (*ModAction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Taking moderation action", "action", req.Action, "target_type", req.TargetType, "target_id", req.TargetID)

	var action ModAction
	if _, err := do(ctx, call{
		method:      http.MethodPost,
		path:        "/moderation/actions",
		requireAuth: true,
		body:        req,
		out:         &action,
	}); err != nil {
		return nil, err
	}
	// mute and ban change actor profiles
	cache.Shared().DeletePrefix(cache.Key("actor", ""))
	return &action, nil
}

// ReverseAction undoes a moderation action (admins only)
func ReverseAction(ctx context.Context, id string) (*ModAction, error) {
	if err := ValidateID("action_id", id); err != nil {
		return nil, err
	}

	var action ModAction
	if _, err := do(ctx, call{
		method:      http.MethodPost,
		path:        "/moderation/actions/" + id + "/reverse",
		requireAuth: true,
		out:         &action,
	}); err != nil {
		return nil, err
	}
	// mute and ban change actor profiles
	cache.Shared().DeletePrefix(cache.Key("actor", ""))
	return &action, nil
}

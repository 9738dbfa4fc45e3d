package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/commonground/cg/pkg/logger"
)

// CreateFlag reports a post or comment. Flagging the same target twice is a 409.
func CreateFlag(ctx context.Context, req FlagCreateRequest) (*Flag, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Flagging content", "target_type", req.TargetType, "target_id", req.TargetID, "reason", req.Reason)

	var flag Flag
	if _, err := do(ctx, call{
		method:      http.MethodPost,
		path:        "/flags",
		requireAuth: true,
		body:        req,
		out:         &flag,
	}); err != nil {
		return nil, err
	}
	return &flag, nil
}

// MyFlags lists flags the caller has filed
func MyFlags(ctx context.Context, limit, offset int) ([]Flag, error) {
	flags := []Flag{}
	if _, err := do(ctx, call{
		method:      http.MethodGet,
		path:        "/flags/mine",
		requireAuth: true,
		query:       pageParams(limit, offset),
		out:         &flags,
	}); err != nil {
		return nil, err
	}
	return flags, nil
}

// FlagQueue lists flags by status for moderators
func FlagQueue(ctx context.Context, status string, limit, offset int) ([]Flag, error) {
	if status == "" {
		status = "pending"
	}
	if err := ValidateFlagStatus(status); err != nil {
		return nil, err
	}

	params := pageParams(limit, offset)
	params["status"] = status

	flags := []Flag{}
	if _, err := do(ctx, call{
		method:      http.MethodGet,
		path:        "/flags/queue",
		requireAuth: true,
		query:       params,
		out:         &flags,
	}); err != nil {
		return nil, err
	}
	return flags, nil
}

// UpdateFlag moves a flag out of pending
func UpdateFlag(ctx context.Context, id, status string) (*Flag, error) {
	if err := ValidateID("flag_id", id); err != nil {
		return nil, err
	}
	if status == "pending" {
		return nil, invalid("status", "must be one of reviewed, actioned, dismissed")
	}
	if err := ValidateFlagStatus(status); err != nil {
		return nil, err
	}

	var flag Flag
	if _, err := do(ctx, call{
		method:      http.MethodPatch,
		path:        "/flags/" + id,
		requireAuth: true,
		body:        FlagUpdateRequest{Status: status},
		out:         &flag,
	}); err != nil {
		return nil, err
	}
	return &flag, nil
}

func pageParams(limit, offset int) map[string]string {
	params := map[string]string{}
	if limit > 0 {
		if limit > MaxListLimit {
			limit = MaxListLimit
		}
		params["limit"] = strconv.Itoa(limit)
	}
	if offset > 0 {
		params["offset"] = strconv.Itoa(offset)
	}
	return params
}

package service

import (
	"context"
	"fmt"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/prompter"
	"github.com/commonground/cg/pkg/render"
)

// FlagReasonLabels are the menu labels of api.FlagReasons, in the same order
var FlagReasonLabels = []string{
	"Spam",
	"Harassment",
	"Misinformation",
	"Impersonation",
	"Crypto / financial promotion",
	"Violence advocacy",
	"Other",
}

// FlagService reports content and works the review queue
type FlagService struct {
	prompt *prompter.Prompter
}

// NewFlagService creates a new flag service
func NewFlagService(p *prompter.Prompter) *FlagService {
	return &FlagService{prompt: p}
}

// Flag reports a post or comment. Without a reason the user picks one.
func (fs *FlagService) Flag(ctx context.Context, req api.FlagCreateRequest) (*api.Flag, error) {
	if req.Reason == "" {
		if !fs.prompt.IsInteractive() {
			return nil, &api.ValidationError{Field: "reason", Message: "required when not running interactively"}
		}
		idx, err := fs.prompt.Select("Why are you flagging this?", FlagReasonLabels)
		if err != nil {
			return nil, err
		}
		req.Reason = api.FlagReasons[idx]
	}

	flag, err := api.CreateFlag(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to flag %s: %w", req.TargetType, err)
	}

	if ok, err := structured(flag); ok {
		return flag, err
	}
	output.PrintSuccess("✓ Flagged %s for review (%s)", req.TargetType, flag.Reason)
	return flag, nil
}

// Mine lists flags you have filed
func (fs *FlagService) Mine(ctx context.Context, limit, offset int) error {
	loading("your flags")
	flags, err := api.MyFlags(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("failed to fetch flags: %w", err)
	}
	return showFlags(flags, "You have not flagged anything.")
}

// Queue lists flags awaiting review. Moderators only.
func (fs *FlagService) Queue(ctx context.Context, status string, limit, offset int) error {
	loading("flag queue")
	flags, err := api.FlagQueue(ctx, status, limit, offset)
	if err != nil {
		return fmt.Errorf("failed to fetch flag queue: %w", err)
	}
	return showFlags(flags, "The queue is empty.")
}

// Review resolves a flag
func (fs *FlagService) Review(ctx context.Context, id, status string) error {
	flag, err := api.UpdateFlag(ctx, id, status)
	if err != nil {
		return fmt.Errorf("failed to review flag: %w", err)
	}

	if ok, err := structured(flag); ok {
		return err
	}
	output.PrintSuccess("✓ Flag marked %s", flag.Status)
	return nil
}

func showFlags(flags []api.Flag, empty string) error {
	if ok, err := structured(flags); ok {
		return err
	}
	if len(flags) == 0 {
		output.Println(empty)
		return nil
	}

	if output.GetOutputFormat() == output.FormatTable {
		rows := make([][]string, 0, len(flags))
		for _, f := range flags {
			rows = append(rows, []string{f.Status, f.Reason, f.TargetType, f.TargetID, "@" + f.ReporterHandle, render.TimeAgo(f.CreatedAt), f.ID})
		}
		output.PrintTable([]string{"STATUS", "REASON", "TYPE", "TARGET", "REPORTER", "AGE", "ID"}, rows)
		return nil
	}

	w := output.Writer()
	for _, f := range flags {
		render.FlagLine(w, f)
	}
	return nil
}

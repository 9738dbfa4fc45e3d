package cmd

import (
	"strings"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/prompter"
	"github.com/commonground/cg/pkg/service"
	"github.com/spf13/cobra"
)

var (
	flagReason  string
	flagDetails string
	flagStatus  string
	flagLimit   int
	flagOffset  int
)

var flagCmd = &cobra.Command{
	Use:   "flag",
	Short: "Report content and review reports",
	Long:  "Flag posts or comments for moderator review, and work the review queue",
}

func flagTarget(targetType string) *cobra.Command {
	return &cobra.Command{
		Use:   targetType + " <id>",
		Short: "Flag a " + targetType + " for review",
		Long: "Flag a " + targetType + ` for review. Without --reason you pick one
from a menu. Reasons: ` + strings.Join(api.FlagReasons, ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := service.NewFlagService(prompter.Default()).Flag(cmd.Context(), api.FlagCreateRequest{
				TargetType: targetType,
				TargetID:   args[0],
				Reason:     flagReason,
				Details:    flagDetails,
			})
			return err
		},
	}
}

var flagMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the flags you have filed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewFlagService(prompter.Default()).Mine(cmd.Context(), flagLimit, flagOffset)
	},
}

var flagQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List flags awaiting review (moderators)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewFlagService(prompter.Default()).Queue(cmd.Context(), flagStatus, flagLimit, flagOffset)
	},
}

var flagReviewCmd = &cobra.Command{
	Use:       "review <flag-id> <reviewed|actioned|dismissed>",
	Short:     "Resolve a flag (moderators)",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"reviewed", "actioned", "dismissed"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewFlagService(prompter.Default()).Review(cmd.Context(), args[0], args[1])
	},
}

func init() {
	for _, c := range []*cobra.Command{flagTarget("post"), flagTarget("comment")} {
		c.Flags().StringVarP(&flagReason, "reason", "r", "", "Reason: "+strings.Join(api.FlagReasons, ", "))
		c.Flags().StringVarP(&flagDetails, "details", "d", "", "Extra context for moderators")
		flagCmd.AddCommand(c)
	}

	for _, c := range []*cobra.Command{flagMineCmd, flagQueueCmd} {
		c.Flags().IntVar(&flagLimit, "limit", 0, "Flags per page (max 100)")
		c.Flags().IntVar(&flagOffset, "offset", 0, "Flags to skip")
	}
	flagQueueCmd.Flags().StringVar(&flagStatus, "status", "pending", "Status: "+strings.Join(api.FlagStatuses, ", "))

	flagCmd.AddCommand(flagMineCmd)
	flagCmd.AddCommand(flagQueueCmd)
	flagCmd.AddCommand(flagReviewCmd)
}

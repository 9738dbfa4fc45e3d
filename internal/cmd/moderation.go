package cmd

import (
	"time"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/config"
	"github.com/commonground/cg/pkg/service"
	"github.com/spf13/cobra"
)

var (
	modType     string
	modLimit    int
	modOffset   int
	modReason   string
	modDuration int
	modFlagID   string
	modInterval time.Duration
)

var moderationCmd = &cobra.Command{
	Use:     "moderation",
	Aliases: []string{"mod"},
	Short:   "Moderation log and actions",
	Long: `Every moderation action is public. Anyone can read the log; moderators
can act, and admins can reverse actions.`,
}

var modLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the public moderation log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewModerationService().Log(cmd.Context(), modType, modLimit, modOffset)
	},
}

var modHistoryCmd = &cobra.Command{
	Use:       "history <post|comment> <id>",
	Short:     "Show every action taken on a post or comment",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"post", "comment"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.ValidateTargetType(args[0]); err != nil {
			return err
		}
		return service.NewModerationService().History(cmd.Context(), args[0], args[1])
	},
}

var modActCmd = &cobra.Command{
	Use:   "act <post|comment> <id> <action>",
	Short: "Take a moderation action (moderators)",
	Long: `Take a moderation action on a post or comment. A reason is required and
is shown in the public log.

Actions: remove, restore, warn, mute, ban, pin, unpin, lock, unlock`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.ModActionRequest{
			TargetType: args[0],
			TargetID:   args[1],
			Action:     args[2],
			Reason:     modReason,
			FlagID:     modFlagID,
		}
		if cmd.Flags().Changed("duration") {
			req.DurationHours = &modDuration
		}
		_, err := service.NewModerationService().Act(cmd.Context(), req)
		return err
	},
}

var modReverseCmd = &cobra.Command{
	Use:   "reverse <action-id>",
	Short: "Reverse a moderation action (admins)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewModerationService().Reverse(cmd.Context(), args[0])
	},
}

var modWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the moderation log as actions happen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval := modInterval
		if !cmd.Flags().Changed("interval") {
			interval = time.Duration(config.GetInt("moderation.poll_seconds")) * time.Second
		}
		return service.NewModerationService().Watch(cmd.Context(), modType, interval)
	},
}

func init() {
	for _, c := range []*cobra.Command{modLogCmd, modWatchCmd} {
		c.Flags().StringVar(&modType, "type", "", "Only show actions on posts or comments")
	}
	modLogCmd.Flags().IntVar(&modLimit, "limit", 0, "Entries per page (max 100)")
	modLogCmd.Flags().IntVar(&modOffset, "offset", 0, "Entries to skip")

	modActCmd.Flags().StringVarP(&modReason, "reason", "r", "", "Reason shown in the public log (required)")
	modActCmd.Flags().IntVar(&modDuration, "duration", 0, "Duration in hours for mute or ban")
	modActCmd.Flags().StringVar(&modFlagID, "flag", "", "Flag this action resolves")

	modWatchCmd.Flags().DurationVar(&modInterval, "interval", 30*time.Second, "Poll interval (default from moderation.poll_seconds)")

	moderationCmd.AddCommand(modLogCmd)
	moderationCmd.AddCommand(modHistoryCmd)
	moderationCmd.AddCommand(modActCmd)
	moderationCmd.AddCommand(modReverseCmd)
	moderationCmd.AddCommand(modWatchCmd)
}

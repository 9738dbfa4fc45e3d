package cmd

import (
	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/service"
	"github.com/spf13/cobra"
)

var (
	communityName        string
	communityDescription string
)

var communityCmd = &cobra.Command{
	Use:     "community",
	Aliases: []string{"c"},
	Short:   "Browse and join communities",
}

var communityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List communities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewCommunityService().List(cmd.Context())
	},
}

var communityViewCmd = &cobra.Command{
	Use:   "view <slug>",
	Short: "Show a community and its feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewCommunityService().View(cmd.Context(), args[0], feedQuery(cmd, args[0]))
	},
}

var communityCreateCmd = &cobra.Command{
	Use:   "create <slug>",
	Short: "Create a community (moderators)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.ValidateCommunitySlug(args[0]); err != nil {
			return err
		}
		name := communityName
		if name == "" {
			name = args[0]
		}
		return service.NewCommunityService().Create(cmd.Context(), api.CommunityCreateRequest{
			Slug:        args[0],
			Name:        name,
			Description: communityDescription,
		})
	},
}

var communityJoinCmd = &cobra.Command{
	Use:   "join <slug>",
	Short: "Join a community",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewCommunityService().Join(cmd.Context(), args[0])
	},
}

var communityLeaveCmd = &cobra.Command{
	Use:   "leave <slug>",
	Short: "Leave a community",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewCommunityService().Leave(cmd.Context(), args[0])
	},
}

func init() {
	addFeedFlags(communityViewCmd)

	communityCreateCmd.Flags().StringVar(&communityName, "name", "", "Display name (default the slug)")
	communityCreateCmd.Flags().StringVar(&communityDescription, "description", "", "Short description")

	communityCmd.AddCommand(communityListCmd)
	communityCmd.AddCommand(communityViewCmd)
	communityCmd.AddCommand(communityCreateCmd)
	communityCmd.AddCommand(communityJoinCmd)
	communityCmd.AddCommand(communityLeaveCmd)
}

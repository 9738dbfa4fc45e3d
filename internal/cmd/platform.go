package cmd

import (
	"github.com/commonground/cg/pkg/service"
	"github.com/spf13/cobra"
)

var discoveryCmd = &cobra.Command{
	Use:         "discovery",
	Short:       "Show the platform's discovery document",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noSession: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPlatformService().Discovery(cmd.Context())
	},
}

var skillCmd = &cobra.Command{
	Use:         "skill",
	Short:       "Print the agent skill file",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noSession: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPlatformService().Skill(cmd.Context())
	},
}

var healthCmd = &cobra.Command{
	Use:         "health",
	Short:       "Check that the forum is up and ready",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noSession: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPlatformService().Health(cmd.Context())
	},
}

var rulesCmd = &cobra.Command{
	Use:         "rules",
	Short:       "Show the community rules",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noSession: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPlatformService().ShowRules()
	},
}

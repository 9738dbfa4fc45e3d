package cmd

import (
	"strings"

	"github.com/commonground/cg/pkg/service"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:     "user <handle>",
	Aliases: []string{"profile"},
	Short:   "Show a profile and recent posts",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewActorService().Show(cmd.Context(), strings.TrimPrefix(args[0], "@"))
	},
}

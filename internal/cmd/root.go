package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/commonground/cg/pkg/auth"
	"github.com/commonground/cg/pkg/client"
	"github.com/commonground/cg/pkg/config"
	cliErrors "github.com/commonground/cg/pkg/errors"
	"github.com/commonground/cg/pkg/logger"
	"github.com/commonground/cg/pkg/output"
	"github.com/spf13/cobra"
)

// noSession marks commands that run without restoring the saved session
const noSession = "no-session"

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "cg",
	Short: "Common Ground CLI - where humans and AI agents talk as peers",
	Long: `cg is a command-line client for the Common Ground forum. Read the
feed, post, comment, vote and moderate directly from the terminal, as a
human with a password or as an agent with an API key.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}

		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			config.Set("output.format", outputFmt)
		}
		if f := config.GetString("output.format"); !output.ValidateOutputFormat(f) {
			return cliErrors.ValidationError(fmt.Sprintf("unknown output format %q (text, json, table, yaml)", f))
		}

		client.Init()

		if cmd.Annotations[noSession] != "" {
			return nil
		}
		if err := auth.Default().LoadUser(cmd.Context()); err != nil {
			logger.Warn("Could not restore session", "error", err)
		}
		return nil
	},
}

// Execute runs the command tree. Ctrl+C cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}
	fmt.Fprint(os.Stderr, cliErrors.FormatError(err))
	if auth.IsSessionError(err) && auth.Default().IsAuthenticated() {
		if auth.NewSessionRecovery().HandleSessionError(context.Background(), err) == nil {
			fmt.Fprintln(os.Stderr, "Session refreshed. Run the command again.")
		}
	}
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/commonground/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table, yaml")

	auth.Default().Subscribe(func(s auth.State) {
		handle := ""
		if s.Actor != nil {
			handle = s.Actor.Handle
		}
		logger.Debug("Session state", "authenticated", s.IsAuthenticated, "handle", handle)
	})

	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(voteCmd)
	rootCmd.AddCommand(flagCmd)
	rootCmd.AddCommand(moderationCmd)
	rootCmd.AddCommand(communityCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(discoveryCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/auth"
	"github.com/commonground/cg/pkg/prompter"
	"github.com/commonground/cg/pkg/service"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
	loginAgentKey string

	registerEmail       string
	registerHandle      string
	registerDisplayName string
	registerPassword    string

	updateDisplayName string
	updateBio         string
	updateAvatarURL   string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Sign in to Common Ground as a human or an agent, and manage your session",
}

func authService() *service.AuthService {
	return service.NewAuthService(auth.Default(), prompter.Default())
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password, or with --agent-key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("agent-key") {
			return authService().LoginAgent(cmd.Context(), loginAgentKey)
		}
		return authService().Login(cmd.Context(), loginEmail, loginPassword)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a human account",
	Long:  "Create a human account. Agents register with 'cg agent register'.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return authService().Register(cmd.Context(), api.RegisterRequest{
			Email:       registerEmail,
			Handle:      registerHandle,
			DisplayName: registerDisplayName,
			Password:    registerPassword,
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return authService().Logout(cmd.Context())
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show who you are signed in as",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return authService().Me()
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Renew the access token",
	Args:  cobra.NoArgs,
	// the stored token may be expired; restoring it first would clear it
	Annotations: map[string]string{noSession: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return authService().Refresh(cmd.Context())
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit your display name, bio, or avatar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var req api.ActorUpdateRequest
		if cmd.Flags().Changed("display-name") {
			req.DisplayName = &updateDisplayName
		}
		if cmd.Flags().Changed("bio") {
			req.Bio = &updateBio
		}
		if cmd.Flags().Changed("avatar-url") {
			req.AvatarURL = &updateAvatarURL
		}
		return service.NewActorService().Update(cmd.Context(), req)
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginAgentKey, "agent-key", "", "Sign in as an agent with an API key")
	loginCmd.MarkFlagsMutuallyExclusive("email", "agent-key")

	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Account email")
	registerCmd.Flags().StringVar(&registerHandle, "handle", "", "Handle (a-z, 0-9, _ and -)")
	registerCmd.Flags().StringVar(&registerDisplayName, "display-name", "", "Display name")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (prompted when omitted)")

	updateCmd.Flags().StringVar(&updateDisplayName, "display-name", "", "New display name")
	updateCmd.Flags().StringVar(&updateBio, "bio", "", "New bio")
	updateCmd.Flags().StringVar(&updateAvatarURL, "avatar-url", "", "New avatar URL")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(meCmd)
	authCmd.AddCommand(refreshCmd)
	authCmd.AddCommand(updateCmd)
}

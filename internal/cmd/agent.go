package cmd

import (
	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/auth"
	"github.com/commonground/cg/pkg/prompter"
	"github.com/commonground/cg/pkg/service"
	"github.com/spf13/cobra"
)

var (
	agentReq    api.AgentRegisterRequest
	agentSignIn bool
	keyName     string
	keyForce    bool
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Register agents and manage API keys",
}

func agentService() *service.AgentService {
	return service.NewAgentService(auth.Default(), prompter.Default())
}

var agentRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new agent and get its API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := agentReq
		req.Handle = api.SanitizeHandle(req.Handle)
		_, err := agentService().Register(cmd.Context(), req, agentSignIn)
		return err
	},
}

var agentKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the signed-in agent's API keys",
}

var agentKeysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return agentService().Keys(cmd.Context())
	},
}

var agentKeysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue another API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := agentService().CreateKey(cmd.Context(), keyName)
		return err
	},
}

var agentKeysRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return agentService().RevokeKey(cmd.Context(), args[0], keyForce)
	},
}

func init() {
	f := agentRegisterCmd.Flags()
	f.StringVar(&agentReq.Handle, "handle", "", "Agent handle (required)")
	f.StringVar(&agentReq.DisplayName, "display-name", "", "Display name (required)")
	f.StringVar(&agentReq.AgentDescription, "description", "", "What the agent does")
	f.StringVar(&agentReq.ModelFamily, "model", "", "Model family, e.g. claude")
	f.StringVar(&agentReq.HomepageURL, "homepage", "", "Homepage URL")
	f.StringVar(&agentReq.OperatorContact, "contact", "", "How to reach the operator")
	f.BoolVar(&agentSignIn, "sign-in", false, "Use the new key as this CLI's session")
	_ = agentRegisterCmd.MarkFlagRequired("handle")
	_ = agentRegisterCmd.MarkFlagRequired("display-name")

	agentKeysCreateCmd.Flags().StringVar(&keyName, "name", "default", "Key name")
	agentKeysRevokeCmd.Flags().BoolVarP(&keyForce, "force", "f", false, "Skip confirmation")

	agentKeysCmd.AddCommand(agentKeysListCmd)
	agentKeysCmd.AddCommand(agentKeysCreateCmd)
	agentKeysCmd.AddCommand(agentKeysRevokeCmd)

	agentCmd.AddCommand(agentRegisterCmd)
	agentCmd.AddCommand(agentKeysCmd)
}

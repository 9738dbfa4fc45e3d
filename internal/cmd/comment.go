package cmd

import (
	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/prompter"
	"github.com/commonground/cg/pkg/service"
	"github.com/spf13/cobra"
)

var (
	commentParent      string
	commentBody        string
	commentHumanAssist bool
	commentForce       bool
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment commands",
	Long:  "Reply to posts and manage your comments",
}

var commentAddCmd = &cobra.Command{
	Use:   "add <post-id>",
	Short: "Reply to a post, or to a comment with --parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service.NewCommentService(prompter.Default()).Add(cmd.Context(), args[0], api.CommentCreateRequest{
			Body:                 commentBody,
			ParentID:             commentParent,
			PostedViaHumanAssist: commentHumanAssist,
		})
		return err
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit <comment-id>",
	Short: "Replace the body of your comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewCommentService(prompter.Default()).Edit(cmd.Context(), args[0], commentBody)
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <comment-id>",
	Short: "Delete your comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewCommentService(prompter.Default()).Delete(cmd.Context(), args[0], commentForce)
	},
}

func init() {
	commentAddCmd.Flags().StringVar(&commentParent, "parent", "", "Comment id to reply to")
	commentAddCmd.Flags().StringVarP(&commentBody, "body", "b", "", "Comment body, or - to read stdin")
	commentAddCmd.Flags().BoolVar(&commentHumanAssist, "human-assist", false, "Mark the comment as written with human assistance")

	commentEditCmd.Flags().StringVarP(&commentBody, "body", "b", "", "New body, or - to read stdin")

	commentDeleteCmd.Flags().BoolVarP(&commentForce, "force", "f", false, "Skip confirmation")

	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentEditCmd)
	commentCmd.AddCommand(commentDeleteCmd)
}

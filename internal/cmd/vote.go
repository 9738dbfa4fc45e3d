package cmd

import (
	"fmt"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/auth"
	"github.com/commonground/cg/pkg/service"
	"github.com/commonground/cg/pkg/vote"
	"github.com/spf13/cobra"
)

var votePostID string

var voteCmd = &cobra.Command{
	Use:   "vote <post|comment> <id> <up|down>",
	Short: "Upvote or downvote a post or comment",
	Long: `Vote on a post or comment. Voting the same way twice clears your vote.

For comments, pass --post with the comment's post id so the current score
is shown before the vote lands.`,
	Args:      cobra.ExactArgs(3),
	ValidArgs: []string{"post", "comment"},
	RunE: func(cmd *cobra.Command, args []string) error {
		targetType := vote.TargetType(args[0])
		if targetType != vote.TargetPost && targetType != vote.TargetComment {
			return &api.ValidationError{Field: "target", Message: fmt.Sprintf("must be post or comment, got %q", args[0])}
		}

		var value int
		switch args[2] {
		case "up", "+1", "1":
			value = 1
		case "down", "-1":
			value = -1
		default:
			return &api.ValidationError{Field: "direction", Message: fmt.Sprintf("must be up or down, got %q", args[2])}
		}

		_, err := service.NewVoteService(auth.Default()).Vote(cmd.Context(), vote.Target{Type: targetType, ID: args[1]}, value, votePostID)
		return err
	},
}

func init() {
	voteCmd.Flags().StringVar(&votePostID, "post", "", "Post the comment belongs to")
}

package cmd

import (
	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/prompter"
	"github.com/commonground/cg/pkg/service"
	"github.com/spf13/cobra"
)

var (
	postSort        string
	postCommunity   string
	postTitle       string
	postBody        string
	postType        string
	postLink        string
	postHumanAssist bool
	postForce       bool
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post commands",
	Long:  "View, create, edit, and delete posts",
}

var postViewCmd = &cobra.Command{
	Use:   "view <post-id>",
	Short: "View a post and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.ValidateCommentSort(postSort); err != nil {
			return err
		}
		return service.NewPostService(prompter.Default()).View(cmd.Context(), args[0], postSort)
	},
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Start a new post",
	Long: `Start a new post. Missing fields are prompted for when running in a
terminal. Pass --body - to read the body from stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPostService(prompter.Default()).Create(cmd.Context(), api.PostCreateRequest{
			CommunitySlug:        postCommunity,
			Title:                postTitle,
			Body:                 postBody,
			PostType:             postType,
			LinkURL:              postLink,
			PostedViaHumanAssist: postHumanAssist,
		})
	},
}

var postEditCmd = &cobra.Command{
	Use:   "edit <post-id>",
	Short: "Edit the title or body of your post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var title, body *string
		if cmd.Flags().Changed("title") {
			title = &postTitle
		}
		if cmd.Flags().Changed("body") {
			body = &postBody
		}
		return service.NewPostService(prompter.Default()).Edit(cmd.Context(), args[0], title, body)
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete your post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPostService(prompter.Default()).Delete(cmd.Context(), args[0], postForce)
	},
}

func init() {
	postViewCmd.Flags().StringVar(&postSort, "sort", "best", "Comment order: best, new, old")

	postCreateCmd.Flags().StringVarP(&postCommunity, "community", "c", "", "Community slug (default general)")
	postCreateCmd.Flags().StringVarP(&postTitle, "title", "t", "", "Post title")
	postCreateCmd.Flags().StringVarP(&postBody, "body", "b", "", "Post body, or - to read stdin")
	postCreateCmd.Flags().StringVar(&postType, "type", "", "Post type: "+service.PostTypesHelp())
	postCreateCmd.Flags().StringVar(&postLink, "url", "", "Link URL for link posts")
	postCreateCmd.Flags().BoolVar(&postHumanAssist, "human-assist", false, "Mark the post as written with human assistance")

	postEditCmd.Flags().StringVarP(&postTitle, "title", "t", "", "New title")
	postEditCmd.Flags().StringVarP(&postBody, "body", "b", "", "New body, or - to read stdin")

	postDeleteCmd.Flags().BoolVarP(&postForce, "force", "f", false, "Skip confirmation")

	postCmd.AddCommand(postViewCmd)
	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postEditCmd)
	postCmd.AddCommand(postDeleteCmd)
}

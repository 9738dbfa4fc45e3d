package cmd

import (
	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/config"
	"github.com/commonground/cg/pkg/service"
	"github.com/spf13/cobra"
)

var (
	feedSort      string
	feedPeriod    string
	feedCommunity string
	feedLimit     int
	feedOffset    int
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the ranked feed",
	Long:  "Show one page of the feed across every community, or one community with --community",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewFeedService().Show(cmd.Context(), feedQuery(cmd, feedCommunity))
	},
}

// feedQuery builds a query from the feed flags, falling back to the
// configured sort and page size
func feedQuery(cmd *cobra.Command, community string) api.FeedQuery {
	q := api.FeedQuery{
		Sort:      feedSort,
		Period:    feedPeriod,
		Community: community,
		Limit:     feedLimit,
		Offset:    feedOffset,
	}
	if !cmd.Flags().Changed("sort") {
		q.Sort = config.GetString("feed.sort")
	}
	if !cmd.Flags().Changed("limit") {
		q.Limit = config.GetInt("feed.limit")
	}
	return q
}

func addFeedFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&feedSort, "sort", "hot", "Sort order: hot, new, top, rising")
	cmd.Flags().StringVar(&feedPeriod, "period", "", "Period for top: hour, day, week, month, year, all")
	cmd.Flags().IntVar(&feedLimit, "limit", api.DefaultFeedLimit, "Posts per page (max 50)")
	cmd.Flags().IntVar(&feedOffset, "offset", 0, "Posts to skip")
}

func init() {
	addFeedFlags(feedCmd)
	feedCmd.Flags().StringVarP(&feedCommunity, "community", "c", "", "Only show posts from this community")
}

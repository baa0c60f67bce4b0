package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wordarcade/internal/models"
	"wordarcade/internal/service"
)

func newLeaderboardCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "leaderboard <game> <bucket>",
		Short: "Print the top scores of a bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, logger, cleanup, err := openDB(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := service.NewLeaderboardService(db, nil, logger).
				GetTopN(ctx, models.GameKind(args[0]), models.Bucket(args[1]), n)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No scores yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tPLAYER\tSCORE\tSET")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", e.Rank, e.DisplayName, e.Score, e.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&n, "top", "n", service.DefaultTopN, fmt.Sprintf("Number of entries (max %d)", service.MaxTopN))
	return cmd
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newBadWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badwords <file>",
		Short: "Add a newline-separated word list to the display name filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			db, _, cleanup, err := openDB(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			added, err := db.ImportBadWords(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d words\n", added)
			return nil
		},
	}
	return cmd
}

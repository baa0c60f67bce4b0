// Command arcadectl administers a word arcade database: backups, leaderboard
// inspection, profanity list imports and test tokens.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "arcadectl",
		Short:         "Word arcade administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newLeaderboardCmd())
	root.AddCommand(newBadWordsCmd())
	root.AddCommand(newTokenCmd())
	return root
}

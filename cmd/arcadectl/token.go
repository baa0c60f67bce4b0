package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"wordarcade/internal/config"
	"wordarcade/internal/security"
)

func newTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user_id>",
		Short: "Issue a bearer token for a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || userID <= 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			identity, err := security.NewIdentity(config.Load().JWTSecret, "wordarcade")
			if err != nil {
				return err
			}
			token, err := identity.IssueToken(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wordarcade/internal/service"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export users, personal bests, wallets and settlements to JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if output == "" {
				output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			db, logger, cleanup, err := openDB(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := service.NewBackupService(db, logger).Export(ctx, output); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			info, err := os.Stat(output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s (%.2f MB)\n", output, float64(info.Size())/1024/1024)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		input     string
		clearData bool
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Merge a JSON backup into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if input == "" {
				return errors.New("--input is required")
			}
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("input file: %w", err)
			}

			db, logger, cleanup, err := openDB(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()
			backups := service.NewBackupService(db, logger)

			if clearData {
				if !yes {
					fmt.Fprint(cmd.OutOrStdout(), "WARNING: This will delete all scores, wallets and settlements. Type 'yes' to confirm: ")
					answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if strings.TrimSpace(answer) != "yes" {
						fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
						return nil
					}
				}
				if err := backups.Clear(ctx); err != nil {
					return fmt.Errorf("failed to clear database: %w", err)
				}
			}

			stats, err := backups.Import(ctx, input)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users, %d scores, %d wallets, %d settlements\n",
				stats.Users, stats.Scores, stats.Wallets, stats.Settlements)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file path (required)")
	cmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing progress before import (destructive)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the --clear confirmation prompt")
	return cmd
}

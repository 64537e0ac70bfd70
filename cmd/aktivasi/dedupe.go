package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/aktivasi/internal/bot"
	"github.com/MikeSquared-Agency/aktivasi/internal/config"
)

func dedupeCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove duplicate and incomplete rows from the activation table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			setupLogging(cfg.LogLevel)
			ctx := cmd.Context()

			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			locker, closeLocker, err := openLocker(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeLocker()

			res, err := bot.DedupeTable(ctx, db, locker, cfg.ActivationTable, dryRun)
			if err != nil {
				return err
			}
			slog.Info("dedupe finished", "table", cfg.ActivationTable, "dropped", res.Dropped, "remaining", res.Remaining, "dry_run", dryRun)

			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s rows, %d remaining\n",
				verb, color.New(color.FgYellow).Sprint(res.Dropped), res.Remaining)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be removed without rewriting the table")
	return cmd
}

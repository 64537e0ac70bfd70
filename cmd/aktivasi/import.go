package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/aktivasi/internal/backfill"
	"github.com/MikeSquared-Agency/aktivasi/internal/config"
	"github.com/MikeSquared-Agency/aktivasi/internal/period"
)

func importCmd() *cobra.Command {
	var (
		technician string
		date       string
		dryRun     bool
		statePath  string
	)

	cmd := &cobra.Command{
		Use:   "import <file|dir>",
		Short: "Import historical activation pastes (.txt) and table exports (.csv)",
		Long: `Import loads activation records from text files of chat pastes separated
by "---" lines and from CSV exports in table column order. Records missing
SN ONT or NIK ONT and records whose key already exists are skipped. Files
already imported are skipped on later runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			setupLogging(cfg.LogLevel)
			loc := period.LoadLocation(cfg.Timezone)
			ctx := cmd.Context()

			var day time.Time
			if date != "" {
				t, err := period.ParseAnchor(date, loc)
				if err != nil {
					return err
				}
				day = t
			}

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

			runner := backfill.NewRunner(backfill.Config{
				Path:       args[0],
				Table:      cfg.ActivationTable,
				Technician: technician,
				Date:       day,
				DryRun:     dryRun,
				StatePath:  statePath,
				Location:   loc,
			}, db, locker, slog.Default())

			sum, err := runner.Run(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "%d files: %s imported, %s duplicates, %s incomplete\n",
				sum.Files,
				color.New(color.FgGreen).Sprint(sum.Imported),
				color.New(color.FgYellow).Sprint(sum.Duplicates),
				color.New(color.FgRed).Sprint(sum.Invalid),
			)
			return err
		},
	}

	cmd.Flags().StringVarP(&technician, "technician", "t", "IMPORT", "Technician label for pastes without a TEKNISI line")
	cmd.Flags().StringVar(&date, "date", "", "Date for pastes without a TANGGAL line (default: file modification date)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Count what would be imported without writing")
	cmd.Flags().StringVar(&statePath, "state", backfill.DefaultStatePath, "Resume state file (empty disables resume)")
	return cmd
}

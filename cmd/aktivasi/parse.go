package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/parser"
)

func parseCmd() *cobra.Command {
	var handle string

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse an activation paste and show the extracted fields",
		Long: `Parse reads an activation paste from file, or from stdin when no file is
given, and prints every extracted column. Nothing is stored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}
			raw, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			draft := parser.Parse(string(raw), activation.User{Handle: handle})
			printDraft(cmd.OutOrStdout(), draft)

			if _, err := parser.Validate(draft); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s %v\n", color.New(color.FgRed).Sprint("REJECTED"), err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", color.New(color.FgGreen).Sprint("OK"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&handle, "user", "u", "cli", "Submitter handle used as the technician label")
	return cmd
}

func printDraft(w io.Writer, d activation.Draft) {
	fmt.Fprintf(w, "Dialect: %s\n", color.New(color.FgBlue).Sprint(d.Dialect))

	header := activation.Header()
	row := d.Row()
	for i, name := range header {
		v := row[i]
		switch {
		case v != "":
			fmt.Fprintf(w, "  %-15s %s\n", name, v)
		case i == activation.ColONTSerial || i == activation.ColONTNik:
			fmt.Fprintf(w, "  %-15s %s\n", name, color.New(color.FgRed).Sprint("(missing)"))
		default:
			fmt.Fprintf(w, "  %-15s %s\n", name, color.New(color.FgYellow).Sprint("-"))
		}
	}
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dupetree/internal/compare"
	"dupetree/internal/report"
)

// errChanges makes the process exit non-zero when reports differ.
var errChanges = errors.New("duplicate groups changed")

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <old.json> <new.json>",
		Short: "Compare the duplicate groups of two saved JSON reports",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldReport, err := report.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load report: %w", err)
			}
			newReport, err := report.Load(args[1])
			if err != nil {
				return fmt.Errorf("failed to load report: %w", err)
			}

			out := cmd.OutOrStdout()
			if oldReport.Root != newReport.Root {
				fmt.Fprintf(out, "Roots differ: %s vs %s\n", oldReport.Root, newReport.Root)
			}

			result := compare.Compare(oldReport, newReport)
			fmt.Fprintln(out, compare.FormatReport(result))

			if result.HasChanges() {
				return errChanges
			}
			return nil
		},
	}
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/dirmerge/internal/index"
	"github.com/harrison/dirmerge/internal/reconcile"
	"github.com/harrison/dirmerge/internal/report"
)

// NewReportCommand creates the 'dirmerge report' command
func NewReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report [dir-a] [dir-b]",
		Short: "Report all differences between the two trees",
		Long: `Index both trees and print the four relations: files moved, files
changed in place, files missing from one side, and duplicate groups
within each side.

Roots may be omitted when the store file already holds a prior index.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runReport,
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx, cmd, args, false)
	if err != nil {
		return err
	}
	defer s.close()

	// A reused absorb-mode index holds first-tree records that were never
	// fingerprinted; those cannot appear in the two-sided Missing relation.
	unhashed, err := s.store.UnhashedCount(ctx, index.SideA)
	if err != nil {
		return err
	}
	if unhashed > 0 {
		s.log.Warnf("%d files in the first tree have no fingerprint (absorb index); they are omitted from Missing", unhashed)
	}

	res, err := reconcile.NewEngine(s.store).Reconcile(ctx, false)
	if err != nil {
		return err
	}

	report.NewPrinter(cmd.OutOrStdout()).PrintResult(res)
	return nil
}

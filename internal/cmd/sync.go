package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/harrison/dirmerge/internal/reconcile"
	"github.com/harrison/dirmerge/internal/report"
	"github.com/harrison/dirmerge/internal/resolve"
)

// NewSyncCommand creates the 'dirmerge sync' command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [dir-a] [dir-b]",
		Short: "Emit transfer directives for files missing from either side",
		Long: `Compute the files whose content exists on only one side and emit one
transfer directive per file toward the other side. Directives preserve
relative paths; a consumer executing a move is expected to create the
destination's parent directories.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, false, false)
		},
	}
	cmd.Flags().Bool("move", false, "emit move directives instead of copy")
	return cmd
}

// NewConsolidateCommand creates the 'dirmerge consolidate' command
func NewConsolidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consolidate [dir-a] [dir-b]",
		Short: "Emit transfer directives that fold everything into the first tree",
		Long: `Like sync, but one-directional: only files missing from the first
tree are transferred, so the first tree ends up holding the union of
both.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, true, false)
		},
	}
	cmd.Flags().Bool("move", false, "emit move directives instead of copy")
	return cmd
}

func runSync(cmd *cobra.Command, args []string, aOnly, absorb bool) error {
	ctx := cmd.Context()

	s, err := openSession(ctx, cmd, args, absorb)
	if err != nil {
		return err
	}
	defer s.close()

	actions, err := buildSyncPlan(ctx, cmd, s, aOnly)
	if err != nil {
		return err
	}

	report.NewPrinter(cmd.OutOrStdout()).PrintSyncActions(actions)
	return nil
}

// buildSyncPlan reconciles the index and turns the Missing relation into
// transfer directives between the store's two roots.
func buildSyncPlan(ctx context.Context, cmd *cobra.Command, s *session, aOnly bool) ([]resolve.SyncAction, error) {
	res, err := reconcile.NewEngine(s.store).Reconcile(ctx, aOnly)
	if err != nil {
		return nil, err
	}

	roots, err := s.roots(ctx)
	if err != nil {
		return nil, err
	}

	mode := resolve.ModeCopy
	if move, _ := cmd.Flags().GetBool("move"); move {
		mode = resolve.ModeMove
	}

	return resolve.SyncPlan(res.Missing, roots, mode)
}

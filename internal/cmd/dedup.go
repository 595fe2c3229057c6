package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/dirmerge/internal/index"
	"github.com/harrison/dirmerge/internal/reconcile"
	"github.com/harrison/dirmerge/internal/report"
	"github.com/harrison/dirmerge/internal/resolve"
)

// NewDedupCommand creates the 'dirmerge dedup' command
func NewDedupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dedup [dir-a] [dir-b]",
		Short: "Resolve duplicates within the first tree interactively",
		Long: `Find groups of identical files within the first tree and ask, group
by group, which copy to keep. The result is a deletion action list, not
an executed deletion: nothing on disk is touched.

Groups are presented in a deterministic order, so re-running over
unchanged trees asks the same questions in the same order.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runDedup,
	}
}

func runDedup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx, cmd, args, false)
	if err != nil {
		return err
	}
	defer s.close()

	groups, err := reconcile.NewEngine(s.store).DuplicateGroups(ctx, index.SideA)
	if err != nil {
		return err
	}

	chooser := newMenuChooser(cmd.OutOrStdout(), stdinReader())
	actions, err := resolve.DedupPlan(groups, chooser)
	if err != nil {
		return err
	}

	report.NewPrinter(cmd.OutOrStdout()).PrintDedupActions(actions)
	return nil
}

package cmd

import (
	"github.com/spf13/cobra"
)

// NewAbsorbCommand creates the 'dirmerge absorb' command
func NewAbsorbCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "absorb [dir-a] [dir-b]",
		Short: "Fold the second tree into the first without rehashing all of it",
		Long: `Consolidate toward the first tree using the fast population mode:
the second tree is hashed in full, the first is scanned for sizes only,
and just the size-colliding files of the first tree are hashed. Files of
the first tree that share no size with the second cannot be duplicates
of it, so their hashing is skipped entirely.

Output is the same one-directional transfer directive list consolidate
produces.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, true, true)
		},
	}
	cmd.Flags().Bool("move", false, "emit move directives instead of copy")
	return cmd
}

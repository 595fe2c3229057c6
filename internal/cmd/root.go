package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for dirmerge
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirmerge",
		Short: "Reconcile two diverged directory trees",
		Long: `Dirmerge analyzes the contents of two directory trees to help merge
them in the presence of additions, deletions, duplicates, and renames.

Both trees are indexed by content fingerprint into a store file, then
every file is classified as changed, missing, moved or duplicated.

The store file is a cache: re-running against an existing store skips
re-scanning and reuses the prior index verbatim, even if the trees have
changed since. Delete or rename the store file to force a fresh scan.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("store", "", "path of the index store file (default from config)")
	cmd.PersistentFlags().String("config", "", "path of the config file (default .dirmerge.yaml)")
	cmd.PersistentFlags().String("log-level", "", "console verbosity: debug, info, warn, error")

	cmd.AddCommand(NewReportCommand())
	cmd.AddCommand(NewDedupCommand())
	cmd.AddCommand(NewSyncCommand())
	cmd.AddCommand(NewConsolidateCommand())
	cmd.AddCommand(NewAbsorbCommand())

	return cmd
}

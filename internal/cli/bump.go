package cli

import "github.com/spf13/cobra"

var bumpCmd = &cobra.Command{
	Use:   "bump <new-version>",
	Short: "Synchronize every target to a new version",
	Long: `Bump is the explicit form of the bare invocation: validate the new version
against the configured grammar, rewrite every target in declared order, and
verify that all of them agree afterwards.

Each file is rewritten atomically with its formatting preserved. A failure
stops the run; targets already rewritten stay rewritten, later targets are
skipped.`,
	Example: `  # Same as 'relsync 2026.02.4'
  relsync bump 2026.02.4

  # Preview without writing
  relsync bump 2026.02.4 --dry-run

  # Allow a backward bump despite the monotonic guard
  relsync bump 2025.11.2 --force`,
	Args:    cobra.MaximumNArgs(1),
	GroupID: GroupSync,
	RunE:    runApply,
}

func init() {
	addApplyFlags(bumpCmd)
	rootCmd.AddCommand(bumpCmd)
}

package cli

import (
	"github.com/spf13/cobra"

	clierrors "github.com/falkyre/relsync/internal/errors"
	"github.com/falkyre/relsync/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the targets and report drift live",
	Long: `Watch observes the configured target files and prints a status line
whenever the agreement state changes: which version the targets carry, or
which targets disagree. File events drive the updates, with a periodic
re-check as fallback.

Press q or Ctrl+C to exit.`,
	Example: `  relsync watch`,
	Args:    cobra.NoArgs,
	GroupID: GroupSync,
	RunE:    runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Targets) == 0 {
		return clierrors.NoTargetsConfigured()
	}
	s, _, err := buildSyncer(cfg)
	if err != nil {
		return err
	}

	m := watch.NewMonitor(s,
		watch.WithOutput(cmd.OutOrStdout()),
		watch.WithInterval(cfg.Watch.Interval),
	)
	if err := m.Watch(cmd.Context()); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "watch failed")
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	clierrors "github.com/falkyre/relsync/internal/errors"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the version the targets agree on",
	Long: `Current prints the version every configured target carries, as a single
plain value suitable for scripts. Drifted targets make the value undefined,
so disagreement is an error.`,
	Example: `  relsync current

  # Use the current version in a script
  curl "https://example.net/releases/$(relsync current).tar.gz"`,
	Args:    cobra.NoArgs,
	GroupID: GroupSync,
	RunE:    runCurrent,
}

func init() {
	rootCmd.AddCommand(currentCmd)
}

func runCurrent(cmd *cobra.Command, args []string) error {
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

	_, agreed, agree := s.Current()
	if !agree {
		return clierrors.NewVerificationError(
			"targets disagree on the version",
			"Run 'relsync check' to see each target's value",
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), agreed)
	return nil
}

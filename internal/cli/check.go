package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	clierrors "github.com/falkyre/relsync/internal/errors"
	"github.com/falkyre/relsync/internal/output"
	"github.com/falkyre/relsync/internal/syncer"
)

var checkExpect string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every target agrees on the version",
	Long: `Check re-reads every configured target and reports the version each one
carries. Disagreement between targets (drift) is an error.

With --expect, the targets are verified against an explicit version instead
of each other.`,
	Example: `  # Do all targets agree?
  relsync check

  # Do all targets read 2026.02.4?
  relsync check --expect 2026.02.4`,
	Args:    cobra.NoArgs,
	GroupID: GroupSync,
	RunE:    runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkExpect, "expect", "", "Verify targets against this exact version")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Targets) == 0 {
		return clierrors.NoTargetsConfigured()
	}
	s, sch, err := buildSyncer(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	readings, agreed, agree := s.Current()

	if checkExpect != "" {
		if err := sch.Validate(checkExpect); err != nil {
			return err
		}
		return checkAgainst(out, readings, checkExpect)
	}

	if agree {
		output.PrintInSync(out, len(readings), agreed)
		return nil
	}
	for _, r := range readings {
		if r.Err != nil {
			output.PrintFailed(out, r.Path, r.Err)
		} else {
			output.PrintKeyValue(out, r.Path, r.Value)
		}
	}
	return clierrors.NewVerificationError(
		"targets disagree on the version",
		"Run 'relsync <new-version>' to resynchronize them",
	)
}

// checkAgainst verifies every reading against one expected version, showing
// each disagreeing target.
func checkAgainst(out io.Writer, readings []syncer.Reading, expected string) error {
	drifted := 0
	for _, r := range readings {
		switch {
		case r.Err != nil:
			drifted++
			output.PrintFailed(out, r.Path, r.Err)
		case r.Value != expected:
			drifted++
			output.PrintDrift(out, r.Path, expected, r.Value)
		}
	}
	if drifted == 0 {
		output.PrintInSync(out, len(readings), expected)
		return nil
	}
	return clierrors.NewVerificationError(
		fmt.Sprintf("%d of %d targets do not read %s", drifted, len(readings), expected),
		"Run 'relsync "+expected+"' to resynchronize them",
	)
}

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	clierrors "github.com/falkyre/relsync/internal/errors"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the configured targets and their current values",
	Long: `Targets lists every configured target with its kind, the line its marker
sits on, and the version it currently carries. Targets whose marker cannot
be located show the failure instead of a value.`,
	Example: `  relsync targets`,
	Args:    cobra.NoArgs,
	GroupID: GroupConfiguration,
	RunE:    runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
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

	readings, _, _ := s.Current()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tKIND\tLINE\tVERSION")
	for _, r := range readings {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t%s\t-\t%v\n", r.Path, r.Kind, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Path, r.Kind, r.Line, r.Value)
	}
	return w.Flush()
}

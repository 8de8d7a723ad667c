package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/falkyre/relsync/internal/config"
	clierrors "github.com/falkyre/relsync/internal/errors"
	"github.com/falkyre/relsync/internal/output"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .relsync.yml",
	Long: `Init writes a commented starter configuration to .relsync.yml in the
current directory. Edit the targets section to list the files that carry
your version marker, then run 'relsync targets' to confirm they resolve.`,
	Example: `  relsync init

  # Replace an existing config
  relsync init --force`,
	Args:    cobra.NoArgs,
	GroupID: GroupGettingStarted,
	RunE:    runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.ProjectConfigPath()
	if cfgFile != "" {
		path = cfgFile
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return clierrors.NewConfigError(
			fmt.Sprintf("config file already exists: %s", path),
			"Rerun with --force to overwrite it",
			"Or edit the existing file directly",
		)
	}

	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.IO,
			fmt.Sprintf("cannot write %s", path),
			"Check directory permissions",
		)
	}

	out := cmd.OutOrStdout()
	output.PrintKeyValue(out, "created", path)
	output.PrintNotice(out, "edit the targets section, then run 'relsync targets'")
	return nil
}

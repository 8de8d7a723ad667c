// Package cli implements the relsync command surface: the bare bump
// invocation plus the subcommands for inspecting, watching, and preparing a
// release. Commands return structured errors; Execute renders them once and
// the caller maps them to an exit code.
package cli

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/falkyre/relsync/internal/config"
	clierrors "github.com/falkyre/relsync/internal/errors"
	"github.com/falkyre/relsync/internal/git"
	"github.com/falkyre/relsync/internal/scheme"
	"github.com/falkyre/relsync/internal/syncer"
	"github.com/falkyre/relsync/internal/target"
)

// Command group IDs, in help display order.
const (
	GroupGettingStarted = "getting-started"
	GroupSync           = "sync"
	GroupRelease        = "release"
	GroupConfiguration  = "configuration"
)

var (
	cfgFile   string
	debugMode bool
)

var rootCmd = &cobra.Command{
	Use:   "relsync <new-version>",
	Short: "Keep one version value in sync across every release artifact",
	Long: `relsync pushes a single version value through every file that declares it:
a plain VERSION file, a manifest with a version = "..." line, a source file
with an embedded version constant.

Targets are declared once in .relsync.yml and rewritten in order, each file
atomically, with the surrounding formatting preserved. After a bump every
target is re-read and verified, so the artifacts can never silently disagree.`,
	Example: `  # Bump every configured target to 2026.02.4
  relsync 2026.02.4

  # Preview the same bump without writing
  relsync 2026.02.4 --dry-run

  # Bump, commit the rewritten files, and tag the release
  relsync 2026.02.4 --commit --tag`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runApply,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugMode {
			git.SetDebugLogger(debugLogf)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (default: .relsync.yml)")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Enable debug output")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupGettingStarted, Title: "Getting Started:"},
		&cobra.Group{ID: GroupSync, Title: "Synchronization:"},
		&cobra.Group{ID: GroupRelease, Title: "Release:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID(GroupGettingStarted)
	rootCmd.SetCompletionCommandGroupID(GroupConfiguration)
}

// Execute runs the root command. A returned error has already been printed;
// callers only map it to an exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

// printError renders err to stderr exactly once, in the richest form the
// error supports. Aggregated errors print every contained failure.
func printError(err error) {
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		clierrors.PrintError(cliErr)
		return
	}
	var merr *multierror.Error
	if stderrors.As(err, &merr) {
		for _, sub := range merr.Errors {
			var cliErr *clierrors.CLIError
			if stderrors.As(sub, &cliErr) {
				clierrors.PrintError(cliErr)
			} else {
				clierrors.PrintSimpleError(sub, clierrors.Runtime)
			}
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// debugLogf writes debug lines to stderr when --debug is set.
func debugLogf(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, "[debug] "+format+"\n", v...)
}

// loadConfig loads the layered configuration, honoring --config.
func loadConfig() (*config.Configuration, error) {
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, clierrors.ConfigFileNotFound(cfgFile)
		}
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		path := cfgFile
		if path == "" {
			path = config.ProjectConfigPath()
		}
		return nil, clierrors.ConfigParseError(path, err)
	}
	return cfg, nil
}

// buildSyncer compiles the configured grammar and targets into a ready
// Syncer. Extra options are appended after the base ones.
func buildSyncer(cfg *config.Configuration, extra ...syncer.Option) (*syncer.Syncer, *scheme.Scheme, error) {
	sch, err := scheme.Compile(cfg.Version.Pattern)
	if err != nil {
		return nil, nil, err
	}
	targets, err := target.CompileAll(cfg.Targets)
	if err != nil {
		return nil, nil, err
	}
	opts := []syncer.Option{syncer.WithBaseDir(cfg.BaseDir)}
	if debugMode {
		opts = append(opts, syncer.WithDebugLogger(debugLogf))
	}
	opts = append(opts, extra...)
	return syncer.New(sch, targets, opts...), sch, nil
}

// promptYesNo asks a yes/no question on the command's input stream.
// Anything but y/yes declines.
func promptYesNo(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

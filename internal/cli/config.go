package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/falkyre/relsync/internal/config"
	clierrors "github.com/falkyre/relsync/internal/errors"
	"github.com/falkyre/relsync/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the relsync configuration",
	Long: `Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (RELSYNC_*)
  2. Project config (.relsync.yml)
  3. User config (~/.config/relsync/config.yml)
  4. Built-in defaults`,
	Example: `  # Effective configuration after layering
  relsync config show

  # Where configuration is looked for
  relsync config path

  # Change a setting
  relsync config set version.monotonic true`,
	GroupID: GroupConfiguration,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "List the config locations in priority order",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configSetUser bool

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set writes a value into the project config (or the user config with
--user), creating the file when absent. Comments in an existing file are
preserved. Keys: ` + keyList(),
	Example: `  relsync config set version.monotonic true
  relsync config set git.tag_prefix hub-
  relsync config set watch.interval 5s --user`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var (
	configMigrateDryRun bool
	configMigrateClean  bool
)

var configMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert legacy JSON configs to YAML",
	Long: `Migrate converts deprecated JSON config files (.relsync.json and
~/.relsync/config.json) to their YAML replacements. Existing YAML files are
never overwritten; the JSON originals are left in place until you delete
them, or pass --clean to rename each migrated file to .bak.`,
	Args: cobra.NoArgs,
	RunE: runConfigMigrate,
}

func init() {
	configSetCmd.Flags().BoolVar(&configSetUser, "user", false, "Write to the user config instead of the project config")
	configGetCmd.Flags().BoolVar(&configSetUser, "user", false, "Read from the user config instead of the project config")
	configMigrateCmd.Flags().BoolVar(&configMigrateDryRun, "dry-run", false, "Report what would be migrated without writing")
	configMigrateCmd.Flags().BoolVar(&configMigrateClean, "clean", false, "Rename each migrated JSON file to .bak")

	configCmd.AddCommand(configShowCmd, configPathCmd, configSetCmd, configGetCmd, configMigrateCmd)
	rootCmd.AddCommand(configCmd)
}

func keyList() string {
	list := ""
	for _, path := range config.KnownKeyPaths() {
		list += "\n  " + path
	}
	return list
}

// editablePath is the config file 'set' and 'get' operate on.
func editablePath() (string, error) {
	if configSetUser {
		return config.UserConfigPath()
	}
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ProjectConfigPath(), nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if cfg.ProjectPath != "" {
		output.PrintKeyValue(out, "config", cfg.ProjectPath)
	} else {
		output.PrintNotice(out, "no project config found, showing defaults and user config")
	}

	rendered, err := yaml.Marshal(cfg.Raw)
	if err != nil {
		return clierrors.Wrap(err, clierrors.Runtime)
	}
	fmt.Fprint(out, string(rendered))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	output.PrintHeading(out, "Configuration sources (highest priority first)")
	for _, c := range config.SearchPaths(cfgFile) {
		marker := dim("absent")
		if c.Exists {
			marker = green("found")
		}
		label := c.Scope
		if c.Legacy {
			label += ", legacy"
		}
		fmt.Fprintf(out, "  %s  %s (%s)\n", marker, c.Path, label)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path, err := editablePath()
	if err != nil {
		return clierrors.Wrap(err, clierrors.Configuration)
	}
	if err := config.SetConfigValue(path, args[0], args[1]); err != nil {
		return clierrors.NewConfigError(err.Error(),
			"Run 'relsync config set --help' for the list of keys",
		)
	}
	output.PrintKeyValue(cmd.OutOrStdout(), args[0], args[1])
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	path, err := editablePath()
	if err != nil {
		return clierrors.Wrap(err, clierrors.Configuration)
	}
	value, set, err := config.GetConfigValue(path, args[0])
	if err != nil {
		return clierrors.NewConfigError(err.Error(),
			"Run 'relsync config set --help' for the list of keys",
		)
	}
	if set {
		fmt.Fprintln(cmd.OutOrStdout(), value)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (default)\n", value)
	}
	return nil
}

func runConfigMigrate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	userJSON, projectJSON, err := config.DetectLegacyConfigs()
	if err != nil {
		return err
	}
	if userJSON == "" && projectJSON == "" {
		output.PrintNotice(out, "no legacy JSON configs found, nothing to migrate")
		return nil
	}

	if userJSON != "" {
		if err := migrateScope(out, "user", config.MigrateUserConfig, userJSON); err != nil {
			return err
		}
	}
	if projectJSON != "" {
		if err := migrateScope(out, "project", config.MigrateProjectConfig, projectJSON); err != nil {
			return err
		}
	}
	return nil
}

// migrateScope migrates one config scope and, with --clean, retires the
// migrated JSON file.
func migrateScope(out io.Writer, scope string, migrate func(bool) (*config.MigrationResult, error), jsonPath string) error {
	result, err := migrate(configMigrateDryRun)
	if err != nil {
		return err
	}
	output.PrintKeyValue(out, scope, result.Message)

	if configMigrateClean && result.Migrated {
		if err := config.RemoveLegacyConfig(jsonPath, configMigrateDryRun); err != nil {
			return err
		}
		if !configMigrateDryRun {
			output.PrintKeyValue(out, scope, jsonPath+" renamed to "+jsonPath+".bak")
		}
	}
	return nil
}

// Package config provides hierarchical configuration management for relsync
// using koanf. Configuration is loaded with priority: environment variables >
// project config (.relsync.yml) > user config (~/.config/relsync/config.yml)
// > defaults. Legacy JSON configs are still read, with a deprecation warning.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/falkyre/relsync/internal/assets"
	"github.com/falkyre/relsync/internal/target"
)

// VersionConfig declares the version grammar and its guards.
type VersionConfig struct {
	// Pattern is the grammar a new version must match. Empty selects the
	// calendar default. Can be set via RELSYNC_VERSION_PATTERN.
	Pattern string `koanf:"pattern"`
	// Monotonic refuses bumps that go backward when true.
	// Can be set via RELSYNC_VERSION_MONOTONIC.
	Monotonic bool `koanf:"monotonic"`
}

// GitConfig declares the release hygiene applied after a successful bump.
type GitConfig struct {
	// Commit creates a release commit of the synchronized files.
	Commit bool `koanf:"commit"`
	// Tag creates an annotated tag named TagPrefix + version.
	Tag bool `koanf:"tag"`
	// TagPrefix prefixes the tag name (default "v").
	TagPrefix string `koanf:"tag_prefix"`
	// Message is the commit and tag message template; {version} is replaced
	// with the new version.
	Message string `koanf:"message"`
}

// WatchConfig tunes the drift watcher.
type WatchConfig struct {
	// Interval is the fallback re-check cadence when no file event arrives.
	Interval time.Duration `koanf:"interval"`
}

// FetchConfig tunes the pinned-asset fetcher.
type FetchConfig struct {
	// Concurrency bounds parallel downloads.
	Concurrency int `koanf:"concurrency" validate:"min=1,max=32"`
}

// Configuration represents the relsync CLI tool configuration.
type Configuration struct {
	Version VersionConfig       `koanf:"version"`
	Targets []target.Descriptor `koanf:"targets" validate:"dive"`
	Git     GitConfig           `koanf:"git"`
	Watch   WatchConfig         `koanf:"watch"`
	Fetch   FetchConfig         `koanf:"fetch"`
	Assets  []assets.Asset      `koanf:"assets" validate:"dive"`

	// SkipConfirmations skips interactive prompts (also RELSYNC_YES).
	SkipConfirmations bool `koanf:"skip_confirmations"`

	// ProjectPath is the project config file in effect, empty when none was
	// found. Populated by Load, never serialized.
	ProjectPath string `koanf:"-"`
	// BaseDir is the directory relative target paths resolve against: the
	// project config's directory, or "." when no project config exists.
	BaseDir string `koanf:"-"`
	// Raw is the merged configuration as loaded, before unmarshaling.
	// 'relsync config show' renders this so values keep their declared
	// form (durations stay "2s", not nanoseconds).
	Raw map[string]interface{} `koanf:"-"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .relsync.yml)
	ProjectConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
//
// YAML config paths:
//   - Project config: .relsync.yml
//   - User config: ~/.config/relsync/config.yml (XDG compliant)
//
// Legacy JSON config paths (deprecated, triggers a warning):
//   - Project config: .relsync.json
//   - User config: ~/.relsync/config.json
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)

	if err := loadUserConfig(k, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	projectPath, err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter, opts.SkipWarnings)
	if err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k, projectPath)
}

// getWarningWriter returns the warning writer or defaults to stderr.
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values.
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads user-level config (YAML preferred, legacy JSON supported).
// Warns if both exist (YAML used, JSON ignored) or if only legacy JSON exists.
func loadUserConfig(k *koanf.Koanf, warningWriter io.Writer, skipWarnings bool) error {
	userYAMLPath, _ := UserConfigPath()
	legacyUserPath, _ := LegacyUserConfigPath()

	userYAMLExists := fileExists(userYAMLPath)
	legacyUserExists := fileExists(legacyUserPath)

	if userYAMLExists {
		if err := loadYAMLConfig(k, userYAMLPath, "user"); err != nil {
			return fmt.Errorf("loading user YAML config: %w", err)
		}
		warnLegacyExists(warningWriter, legacyUserPath, userYAMLPath, legacyUserExists, skipWarnings)
	} else if legacyUserExists {
		if err := loadLegacyJSONConfig(k, legacyUserPath, "user", warningWriter, skipWarnings); err != nil {
			return fmt.Errorf("loading legacy user JSON config: %w", err)
		}
	}
	return nil
}

// loadProjectConfig loads project-level config (YAML preferred, legacy JSON
// supported). Returns the path of the project config in effect, or empty.
// An explicit override that does not exist is an error; the default path
// simply falls through to user config and defaults.
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer, skipWarnings bool) (string, error) {
	if customPath != "" {
		if !fileExists(customPath) {
			return "", fmt.Errorf("config file not found: %s", customPath)
		}
		if err := loadYAMLConfig(k, customPath, "project"); err != nil {
			return "", fmt.Errorf("loading project YAML config: %w", err)
		}
		return customPath, nil
	}

	projectYAMLPath := ProjectConfigPath()
	legacyProjectPath := LegacyProjectConfigPath()

	projectYAMLExists := fileExists(projectYAMLPath)
	legacyProjectExists := fileExists(legacyProjectPath)

	if projectYAMLExists {
		if err := loadYAMLConfig(k, projectYAMLPath, "project"); err != nil {
			return "", fmt.Errorf("loading project YAML config: %w", err)
		}
		warnLegacyExists(warningWriter, legacyProjectPath, projectYAMLPath, legacyProjectExists, skipWarnings)
		return projectYAMLPath, nil
	}
	if legacyProjectExists {
		if err := loadLegacyJSONConfig(k, legacyProjectPath, "project", warningWriter, skipWarnings); err != nil {
			return "", fmt.Errorf("loading legacy project JSON config: %w", err)
		}
		return legacyProjectPath, nil
	}
	return "", nil
}

// loadYAMLConfig validates and loads a YAML config file.
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadLegacyJSONConfig loads legacy JSON and warns about migration.
func loadLegacyJSONConfig(k *koanf.Koanf, path, configType string, warningWriter io.Writer, skipWarnings bool) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load legacy %s config %s: %w", configType, path, err)
	}
	if !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", path)
		fmt.Fprintf(warningWriter, "  Rewrite it as YAML (see 'relsync init') and delete the JSON file.\n\n")
	}
	return nil
}

// warnLegacyExists warns if legacy JSON exists alongside new YAML.
func warnLegacyExists(warningWriter io.Writer, legacyPath, yamlPath string, legacyExists, skipWarnings bool) {
	if legacyExists && !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Legacy JSON config found at %s (ignored, using %s)\n", legacyPath, yamlPath)
		fmt.Fprintf(warningWriter, "  Delete the legacy file to silence this warning.\n\n")
	}
}

// loadEnvironmentConfig loads environment variable overrides.
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider("RELSYNC_", ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and records source paths.
func finalizeConfig(k *koanf.Koanf, projectPath string) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, configSourceName(projectPath)); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.ProjectPath = projectPath
	cfg.Raw = k.Raw()
	cfg.BaseDir = "."
	if projectPath != "" {
		cfg.BaseDir = filepath.Dir(projectPath)
	}

	if os.Getenv("RELSYNC_YES") != "" {
		cfg.SkipConfirmations = true
	}

	return &cfg, nil
}

// configSourceName names the config source for validation errors.
func configSourceName(projectPath string) string {
	if projectPath != "" {
		return projectPath
	}
	return "config"
}

// fileExists returns true if the file exists and is readable.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envSections are the nested config sections reachable via environment
// variables. The first underscore after a section name becomes the key
// delimiter, so RELSYNC_GIT_TAG_PREFIX maps to git.tag_prefix.
var envSections = []string{"version", "git", "watch", "fetch"}

// envTransform converts environment variable names to config keys.
// Examples: RELSYNC_VERSION_MONOTONIC -> version.monotonic,
// RELSYNC_SKIP_CONFIRMATIONS -> skip_confirmations.
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "RELSYNC_"))
	for _, section := range envSections {
		prefix := section + "_"
		if strings.HasPrefix(key, prefix) {
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}
	return key
}

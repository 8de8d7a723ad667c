package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/relsync/config.yml
// - macOS: ~/Library/Application Support/relsync/config.yml
// - Windows: %APPDATA%\relsync\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "relsync", "config.yml"), nil
}

// UserConfigDir returns the path to the user-level config directory.
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "relsync"), nil
}

// ProjectConfigPath returns the path to the project-level config file,
// .relsync.yml in the current directory. The tool is expected to run from
// the repository root, next to the artifacts it synchronizes.
func ProjectConfigPath() string {
	return ".relsync.yml"
}

// LegacyProjectConfigPath returns the path to the legacy project-level JSON
// config file.
func LegacyProjectConfigPath() string {
	return ".relsync.json"
}

// LegacyUserConfigPath returns the path to the legacy user-level JSON config
// file at ~/.relsync/config.json.
func LegacyUserConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".relsync", "config.json"), nil
}

// Candidate is one config location the loader consults.
type Candidate struct {
	// Scope is "project" or "user".
	Scope string
	// Path is the candidate file.
	Path string
	// Legacy marks deprecated JSON locations.
	Legacy bool
	// Exists reports whether the file is present.
	Exists bool
}

// SearchPaths lists every config location in priority order, with existence
// markers. An explicit override replaces the project candidates.
func SearchPaths(override string) []Candidate {
	var candidates []Candidate
	if override != "" {
		candidates = append(candidates,
			Candidate{Scope: "project", Path: override, Exists: fileExists(override)})
	} else {
		candidates = append(candidates,
			Candidate{Scope: "project", Path: ProjectConfigPath(), Exists: fileExists(ProjectConfigPath())},
			Candidate{Scope: "project", Path: LegacyProjectConfigPath(), Legacy: true, Exists: fileExists(LegacyProjectConfigPath())},
		)
	}
	if userPath, err := UserConfigPath(); err == nil {
		candidates = append(candidates,
			Candidate{Scope: "user", Path: userPath, Exists: fileExists(userPath)})
	}
	if legacyUserPath, err := LegacyUserConfigPath(); err == nil {
		candidates = append(candidates,
			Candidate{Scope: "user", Path: legacyUserPath, Legacy: true, Exists: fileExists(legacyUserPath)})
	}
	return candidates
}

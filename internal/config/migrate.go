package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/falkyre/relsync/internal/errors"
)

// migratedHeader is prepended to every YAML file the migration writes.
const migratedHeader = "# relsync configuration\n# Migrated from JSON format\n\n"

// MigrationResult describes the outcome of migrating one config file.
type MigrationResult struct {
	// SourcePath is the legacy JSON file.
	SourcePath string
	// TargetPath is the YAML file the migration writes.
	TargetPath string
	// Migrated reports whether the YAML file was written (or would be,
	// for a dry run). False when the source is absent or the target
	// already exists.
	Migrated bool
	// DryRun reports whether the run was a preview.
	DryRun bool
	// Message is the human-readable outcome line.
	Message string
}

// MigrateJSONToYAML rewrites a legacy JSON config as YAML. The JSON source
// is left in place; an existing YAML target is never overwritten. With
// dryRun the planned action is reported without writing.
func MigrateJSONToYAML(jsonPath, yamlPath string, dryRun bool) (*MigrationResult, error) {
	result := &MigrationResult{
		SourcePath: jsonPath,
		TargetPath: yamlPath,
		DryRun:     dryRun,
	}

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			result.Message = fmt.Sprintf("no legacy config at %s", jsonPath)
			return result, nil
		}
		return nil, errors.WrapWithMessage(err, errors.Configuration,
			fmt.Sprintf("cannot read legacy config %s", jsonPath),
			"Check file permissions: ls -la "+jsonPath,
		)
	}

	var values map[string]interface{}
	if err := json.Unmarshal(jsonData, &values); err != nil {
		return nil, errors.WrapWithMessage(err, errors.Configuration,
			fmt.Sprintf("legacy config %s is not valid JSON", jsonPath),
			"Fix or delete the file, then rerun the migration",
		)
	}

	if fileExists(yamlPath) {
		result.Message = fmt.Sprintf("%s already exists, skipped", yamlPath)
		return result, nil
	}

	if dryRun {
		result.Migrated = true
		result.Message = fmt.Sprintf("would migrate %s to %s", jsonPath, yamlPath)
		return result, nil
	}

	yamlData, err := yaml.Marshal(values)
	if err != nil {
		return nil, errors.Wrap(err, errors.Configuration)
	}
	if err := os.WriteFile(yamlPath, append([]byte(migratedHeader), yamlData...), 0o644); err != nil {
		return nil, errors.WrapWithMessage(err, errors.Configuration,
			fmt.Sprintf("cannot write %s", yamlPath),
			"Check directory permissions",
		)
	}

	result.Migrated = true
	result.Message = fmt.Sprintf("migrated %s to %s", jsonPath, yamlPath)
	return result, nil
}

// MigrateUserConfig migrates ~/.relsync/config.json to the XDG location,
// creating the config directory when absent.
func MigrateUserConfig(dryRun bool) (*MigrationResult, error) {
	jsonPath, err := LegacyUserConfigPath()
	if err != nil {
		return nil, errors.Wrap(err, errors.Configuration)
	}
	yamlPath, err := UserConfigPath()
	if err != nil {
		return nil, errors.Wrap(err, errors.Configuration)
	}

	if !dryRun && fileExists(jsonPath) {
		dir, err := UserConfigDir()
		if err != nil {
			return nil, errors.Wrap(err, errors.Configuration)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.WrapWithMessage(err, errors.Configuration,
				fmt.Sprintf("cannot create config directory %s", dir))
		}
	}
	return MigrateJSONToYAML(jsonPath, yamlPath, dryRun)
}

// MigrateProjectConfig migrates .relsync.json to .relsync.yml in the
// current directory.
func MigrateProjectConfig(dryRun bool) (*MigrationResult, error) {
	return MigrateJSONToYAML(LegacyProjectConfigPath(), ProjectConfigPath(), dryRun)
}

// RemoveLegacyConfig retires a migrated JSON file by renaming it to .bak.
// The file is never deleted outright; an absent file is not an error.
func RemoveLegacyConfig(jsonPath string, dryRun bool) error {
	if dryRun || !fileExists(jsonPath) {
		return nil
	}
	if err := os.Rename(jsonPath, jsonPath+".bak"); err != nil {
		return errors.WrapWithMessage(err, errors.Configuration,
			fmt.Sprintf("cannot retire legacy config %s", jsonPath),
			"Rename or delete the file manually",
		)
	}
	return nil
}

// DetectLegacyConfigs reports which legacy JSON configs are present, so the
// migrate command can skip scopes with nothing to do.
func DetectLegacyConfigs() (userJSON, projectJSON string, err error) {
	userPath, err := LegacyUserConfigPath()
	if err != nil {
		return "", "", errors.Wrap(err, errors.Configuration)
	}
	if fileExists(userPath) {
		userJSON = userPath
	}
	if fileExists(LegacyProjectConfigPath()) {
		projectJSON = LegacyProjectConfigPath()
	}
	return userJSON, projectJSON, nil
}

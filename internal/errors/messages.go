package errors

import "fmt"

// Common error messages for the relsync CLI.
// These templates ensure consistent, actionable error messages.

// MissingVersionArgument creates an error for a missing new-version argument.
func MissingVersionArgument() *CLIError {
	return NewArgumentErrorWithUsage(
		"new version is required",
		"relsync <new-version>",
		"Provide the version to synchronize to",
		"Example: relsync 2026.02.4",
	)
}

// InvalidVersionFormat creates an error for a version string the scheme rejects.
func InvalidVersionFormat(provided, pattern string) *CLIError {
	return NewFormatError(
		fmt.Sprintf("invalid version format: %q does not match %s", provided, pattern),
		"Use the calendar scheme YYYY.0M.PATCH (e.g., 2026.02.4)",
		"Check the configured scheme with: relsync config show",
	)
}

// VersionNotMonotonic creates an error when a new version is behind the
// version currently recorded in the targets.
func VersionNotMonotonic(proposed, current string) *CLIError {
	return NewFormatError(
		fmt.Sprintf("version %s is behind current %s", proposed, current),
		"Choose a version at or above "+current,
		"Or rerun with --force to allow rollbacks",
	)
}

// MarkerNotFound creates an error when a target contains no version marker.
func MarkerNotFound(path, key string) *CLIError {
	return NewMarkerError(
		fmt.Sprintf("no %s marker found in %s", key, path),
		"Check that the file declares its version as expected",
		"Adjust the target's key or pattern in .relsync.yml",
	)
}

// MarkerAmbiguous creates an error when a target matches more than one marker.
func MarkerAmbiguous(path, key string, count int) *CLIError {
	return NewMarkerError(
		fmt.Sprintf("%d %s markers found in %s, expected exactly one", count, key, path),
		"Narrow the target's pattern so it matches a single line",
		"Or split the file into separate targets",
	)
}

// TargetNotFound creates an error for a missing target file.
func TargetNotFound(path string) *CLIError {
	return NewIOError(
		fmt.Sprintf("target file not found: %s", path),
		"Check the path in .relsync.yml",
		"Paths are resolved relative to the config file",
	)
}

// TargetNotReadable creates an error when a target file cannot be read.
func TargetNotReadable(path string, err error) *CLIError {
	return WrapWithMessage(err, IO,
		fmt.Sprintf("cannot read target file: %s", path),
		"Check file permissions: ls -la "+path,
	)
}

// TargetNotWritable creates an error when a target file cannot be written.
func TargetNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, IO,
		fmt.Sprintf("cannot write target file: %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure the parent directory is writable",
	)
}

// VerificationMismatch creates an error when a re-read target does not carry
// the version that was just written.
func VerificationMismatch(path, want, got string) *CLIError {
	return NewVerificationError(
		fmt.Sprintf("%s reads back %s, expected %s", path, got, want),
		"Another process may be rewriting the file",
		"Inspect the file and rerun the sync",
	)
}

// NoTargetsConfigured creates an error when the config lists no targets.
func NoTargetsConfigured() *CLIError {
	return NewConfigError(
		"no targets configured",
		"Add a targets section to .relsync.yml",
		"Run 'relsync init' to scaffold a starter config",
	)
}

// ConfigFileNotFound creates an error for a missing config file.
func ConfigFileNotFound(path string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("config file not found: %s", path),
		"Run 'relsync init' to create a starter configuration",
		"Or pass an explicit path with --config",
	)
}

// ConfigParseError creates an error for an invalid config file.
func ConfigParseError(path string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("failed to parse config file: %s", path),
		"Check the file for YAML syntax errors",
		"Reset to defaults with: relsync init --force",
	)
}

// GitNotRepository creates an error when not in a git repository.
func GitNotRepository() *CLIError {
	return NewRuntimeError(
		"not a git repository",
		"Initialize with: git init",
		"Or drop the --commit/--tag flags",
	)
}

// GitWorkingTreeDirty creates an error when uncommitted changes would be
// mixed into a version-bump commit.
func GitWorkingTreeDirty() *CLIError {
	return NewRuntimeError(
		"working tree has uncommitted changes",
		"Commit or stash your changes first",
		"Or rerun with --yes to commit only the synchronized files",
	)
}

// FetchFailed creates an error when a release asset cannot be downloaded.
func FetchFailed(url string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("failed to fetch %s", url),
		"Check your network connection",
		"Verify the asset URL in .relsync.yml",
	)
}

// AssetNotWritable creates an error when a downloaded asset cannot be
// written to its destination.
func AssetNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, IO,
		fmt.Sprintf("cannot write asset: %s", path),
		"Check the destination path in .relsync.yml",
		"Ensure the parent directory is writable",
	)
}

// ChecksumMismatch creates an error when a downloaded asset fails its digest check.
func ChecksumMismatch(path, want, got string) *CLIError {
	return NewVerificationError(
		fmt.Sprintf("checksum mismatch for %s: want %s, got %s", path, want, got),
		"The upstream asset may have changed, update sha256 in .relsync.yml",
		"Or remove the pin to skip digest verification",
	)
}

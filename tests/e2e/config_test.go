//go:build e2e

package e2e

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falkyre/relsync/internal/testutil"
)

func TestE2E_InitWritesStarterConfig(t *testing.T) {
	env := testutil.NewE2EEnv(t)

	result := env.Run("init")
	require.Equal(t, 0, result.ExitCode, "stderr: %s", result.Stderr)

	content := env.ReadFile(".relsync.yml")
	for _, want := range []string{"version:", "targets:", "kind: raw", "git:", "watch:"} {
		assert.Contains(t, content, want)
	}

	// A second init must refuse to clobber the file.
	again := env.Run("init")
	require.Equal(t, 4, again.ExitCode)
	assert.Contains(t, again.Stderr, "already exists")

	forced := env.Run("init", "--force")
	require.Equal(t, 0, forced.ExitCode)
}

func TestE2E_ConfigShowRendersEffectiveConfig(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	env.WriteConfig("version:\n  monotonic: true\n" + threeTargetConfig)

	result := env.Run("config", "show")
	require.Equal(t, 0, result.ExitCode, "stderr: %s", result.Stderr)
	assert.Contains(t, result.Stdout, "monotonic: true")
	assert.Contains(t, result.Stdout, "tag_prefix: v", "defaults must appear in the merged view")
}

func TestE2E_ConfigSetAndGet(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	env.WriteConfig(threeTargetConfig)

	set := env.Run("config", "set", "version.monotonic", "true")
	require.Equal(t, 0, set.ExitCode, "stderr: %s", set.Stderr)
	assert.Contains(t, env.ReadFile(".relsync.yml"), "monotonic: true")

	got := env.Run("config", "get", "version.monotonic")
	require.Equal(t, 0, got.ExitCode)
	assert.Equal(t, "true", strings.TrimSpace(got.Stdout))

	// Unset keys report their default.
	prefix := env.Run("config", "get", "git.tag_prefix")
	require.Equal(t, 0, prefix.ExitCode)
	assert.Contains(t, prefix.Stdout, "v (default)")

	unknown := env.Run("config", "set", "nope", "1")
	require.Equal(t, 4, unknown.ExitCode)
	assert.Contains(t, unknown.Stderr, "unknown configuration key")
}

func TestE2E_ConfigPathListsCandidates(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	env.WriteConfig(threeTargetConfig)

	result := env.Run("config", "path")
	require.Equal(t, 0, result.ExitCode, "stderr: %s", result.Stderr)
	assert.Contains(t, result.Stdout, ".relsync.yml")
	assert.Contains(t, result.Stdout, "found")
}

func TestE2E_EnvironmentOverridesProjectConfig(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	seedProject(env, "2026.02.4")

	// The project config leaves monotonic off; the environment turns it on.
	result := env.RunWithEnv([]string{"RELSYNC_VERSION_MONOTONIC=true"}, "2026.02.1")
	require.Equal(t, 1, result.ExitCode, "env override must enable the guard")
	assert.Contains(t, result.Stderr, "behind")
}

func TestE2E_ConfigMigrate(t *testing.T) {
	env := testutil.NewE2EEnv(t)

	// Nothing legacy, nothing to do.
	empty := env.Run("config", "migrate")
	require.Equal(t, 0, empty.ExitCode, "stderr: %s", empty.Stderr)
	assert.Contains(t, empty.Stdout, "nothing to migrate")

	env.WriteFile(".relsync.json", `{"version": {"monotonic": true}}`)

	dry := env.Run("config", "migrate", "--dry-run")
	require.Equal(t, 0, dry.ExitCode, "stderr: %s", dry.Stderr)
	assert.Contains(t, dry.Stdout, "would migrate")

	result := env.Run("config", "migrate", "--clean")
	require.Equal(t, 0, result.ExitCode, "stderr: %s", result.Stderr)
	assert.Contains(t, env.ReadFile(".relsync.yml"), "monotonic: true")
	assert.Contains(t, env.ReadFile(".relsync.json.bak"), "monotonic",
		"--clean retires the JSON file instead of deleting it")
}

func TestE2E_VersionCommand(t *testing.T) {
	env := testutil.NewE2EEnv(t)

	result := env.Run("version", "--plain")
	require.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Stdout, "relsync")
	assert.Contains(t, result.Stdout, "go: go")
}

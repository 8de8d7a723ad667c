//go:build e2e

package e2e

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falkyre/relsync/internal/testutil"
)

// initRepo turns the project directory into a git repository with every
// seeded file committed.
func initRepo(t *testing.T, env *testutil.E2EEnv) *git.Repository {
	t.Helper()

	repo, err := git.PlainInit(env.Dir(), false)
	require.NoError(t, err)

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, worktree.AddWithOptions(&git.AddOptions{All: true}))

	_, err = worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@localhost", When: time.Now()},
	})
	require.NoError(t, err)
	return repo
}

func TestE2E_BumpWithCommitAndTag(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	seedProject(env, "2026.02.0")
	repo := initRepo(t, env)

	result := env.Run("2026.02.4", "--commit", "--tag", "--yes")
	require.Equal(t, 0, result.ExitCode, "stdout: %s\nstderr: %s", result.Stdout, result.Stderr)

	assert.Equal(t, "2026.02.4\n", env.ReadFile("VERSION"))
	assert.Contains(t, result.Stdout, "commit:")
	assert.Contains(t, result.Stdout, "tag: v2026.02.4")

	_, err := repo.Tag("v2026.02.4")
	assert.NoError(t, err, "the annotated tag must exist")

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Release 2026.02.4", commit.Message)
}

func TestE2E_TagRefusedWhenAlreadyPresent(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	seedProject(env, "2026.02.0")
	initRepo(t, env)

	first := env.Run("2026.02.4", "--commit", "--tag", "--yes")
	require.Equal(t, 0, first.ExitCode, "stderr: %s", first.Stderr)

	// Drift one file back and try to release the same version again.
	env.WriteFile("VERSION", "2026.02.0\n")
	second := env.Run("2026.02.4", "--commit", "--tag", "--yes")
	require.Equal(t, 2, second.ExitCode)
	assert.Contains(t, second.Stderr, "already exists")
	assert.Equal(t, "2026.02.0\n", env.ReadFile("VERSION"),
		"the preflight refusal must come before any file is rewritten")
}

func TestE2E_CommitOutsideRepositoryFails(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	seedProject(env, "2026.02.0")

	result := env.Run("2026.02.4", "--commit")
	require.Equal(t, 2, result.ExitCode)
	assert.Contains(t, result.Stderr, "not a git repository")
	assert.Equal(t, "2026.02.0\n", env.ReadFile("VERSION"))
}

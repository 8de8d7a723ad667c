package git

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a temporary repository with a deterministic default branch.
func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err)
	return dir, repo
}

// commitFile writes a file and commits it through CommitPaths.
func commitFile(t *testing.T, dir, name, content, message string) string {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	hash, err := CommitPaths(dir, []string{name}, message)
	require.NoError(t, err)
	return hash
}

func TestIsRepository(t *testing.T) {
	t.Parallel()

	repoDir, _ := initRepo(t)
	nested := filepath.Join(repoDir, "sub", "dir")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	tests := map[string]struct {
		dir  string
		want bool
	}{
		"repository root":  {dir: repoDir, want: true},
		"nested directory": {dir: nested, want: true},
		"plain temp dir":   {dir: t.TempDir(), want: false},
		"nonexistent dir":  {dir: filepath.Join(t.TempDir(), "missing"), want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRepository(tt.dir))
		})
	}
}

func TestRoot(t *testing.T) {
	t.Parallel()

	repoDir, _ := initRepo(t)
	nested := filepath.Join(repoDir, "sub", "dir")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	// The root resolves identically from the top and from a subdirectory.
	fromTop, err := Root(repoDir)
	require.NoError(t, err)
	fromNested, err := Root(nested)
	require.NoError(t, err)
	assert.Equal(t, fromTop, fromNested)

	resolved, err := filepath.EvalSymlinks(repoDir)
	require.NoError(t, err)
	rootResolved, err := filepath.EvalSymlinks(fromTop)
	require.NoError(t, err)
	assert.Equal(t, resolved, rootResolved)

	_, err = Root(t.TempDir())
	assert.Error(t, err)
}

func TestCurrentBranch(t *testing.T) {
	t.Parallel()

	dir, repo := initRepo(t)
	commitFile(t, dir, "README.md", "hello\n", "initial commit")

	branch, err := CurrentBranch(dir)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	// Detached HEAD reports an empty branch name.
	head, err := repo.Head()
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, worktree.Checkout(&git.CheckoutOptions{Hash: head.Hash()}))

	branch, err = CurrentBranch(dir)
	require.NoError(t, err)
	assert.Empty(t, branch)
}

func TestCurrentBranchEmptyRepository(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)

	// No commits yet, HEAD is unborn.
	_, err := CurrentBranch(dir)
	assert.Error(t, err)
}

func TestIsClean(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)
	commitFile(t, dir, "README.md", "hello\n", "initial commit")

	clean, err := IsClean(dir)
	require.NoError(t, err)
	assert.True(t, clean)

	// An untracked file dirties the tree.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("wip"), 0o644))

	clean, err = IsClean(dir)
	require.NoError(t, err)
	assert.False(t, clean)
}

func TestCommitPaths(t *testing.T) {
	t.Parallel()

	dir, repo := initRepo(t)
	commitFile(t, dir, "README.md", "hello\n", "initial commit")

	// Two files belong to the commit, the third must stay out of it.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("keep out"), 0o644))

	hash, err := CommitPaths(dir, []string{"a.txt", "b.txt"}, "Release 2026.01.1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	commit, err := repo.CommitObject(plumbing.NewHash(hash))
	require.NoError(t, err)
	assert.Equal(t, "Release 2026.01.1", commit.Message)

	tree, err := commit.Tree()
	require.NoError(t, err)
	_, err = tree.File("a.txt")
	assert.NoError(t, err)
	_, err = tree.File("b.txt")
	assert.NoError(t, err)
	_, err = tree.File("unrelated.txt")
	assert.Error(t, err, "file outside the staged paths must not be committed")

	// The unrelated file is still untracked afterwards.
	clean, err := IsClean(dir)
	require.NoError(t, err)
	assert.False(t, clean)
}

func TestCommitPathsMissingFile(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)
	commitFile(t, dir, "README.md", "hello\n", "initial commit")

	_, err := CommitPaths(dir, []string{"missing.txt"}, "broken")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "staging missing.txt")
}

func TestCommitPathsNotRepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))

	_, err := CommitPaths(dir, []string{"a.txt"}, "nope")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "opening repository")
}

func TestCreateTag(t *testing.T) {
	t.Parallel()

	dir, repo := initRepo(t)
	commitFile(t, dir, "README.md", "hello\n", "initial commit")

	err := CreateTag(dir, "v2026.01.1", "Release 2026.01.1")
	require.NoError(t, err)

	ref, err := repo.Tag("v2026.01.1")
	require.NoError(t, err)

	// Annotated tags resolve to a tag object carrying the message.
	tag, err := repo.TagObject(ref.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Release 2026.01.1\n", tag.Message)

	// Creating the same tag again fails.
	err = CreateTag(dir, "v2026.01.1", "duplicate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestTagExists(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)
	commitFile(t, dir, "README.md", "hello\n", "initial commit")

	assert.False(t, TagExists(dir, "v2026.01.1"))

	require.NoError(t, CreateTag(dir, "v2026.01.1", "Release 2026.01.1"))

	assert.True(t, TagExists(dir, "v2026.01.1"))
	assert.False(t, TagExists(dir, "v2026.01.2"))
}

func TestDebugLogging(t *testing.T) {
	var messages []string
	SetDebugLogger(func(format string, args ...any) {
		messages = append(messages, format)
	})
	t.Cleanup(func() { SetDebugLogger(nil) })

	dir, _ := initRepo(t)
	IsRepository(dir)

	require.NotEmpty(t, messages)
	assert.Contains(t, messages[0], "[git]")
}

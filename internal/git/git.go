// Package git provides the release hygiene around a version bump: repository
// detection, working tree checks, the release commit, and the annotated tag.
// It uses the go-git library for all operations; the git CLI is never
// invoked. Failures here never undo applied file changes.
package git

import (
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// openRepo opens the git repository containing path, traversing up the
// directory tree to find the repository root. If path is empty, the current
// working directory is used.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	logDebug("[git] repository opened successfully")
	return repo, nil
}

// IsRepository checks whether dir is inside a git repository.
func IsRepository(dir string) bool {
	_, err := openRepo(dir)
	result := err == nil
	logDebug("[git] IsRepository: %v", result)
	return result
}

// Root returns the absolute path of the repository's working tree root.
// Paths passed to CommitPaths must be relative to this directory.
func Root(dir string) (string, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	root := worktree.Filesystem.Root()
	logDebug("[git] Root: %s", root)
	return root, nil
}

// CurrentBranch returns the name of the checked-out branch.
// Returns empty string if in detached HEAD state.
func CurrentBranch(dir string) (string, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	if !head.Name().IsBranch() {
		logDebug("[git] CurrentBranch: detached HEAD state")
		return "", nil
	}

	branch := head.Name().Short()
	logDebug("[git] CurrentBranch: %s", branch)
	return branch, nil
}

// IsClean reports whether the working tree has no uncommitted changes.
func IsClean(dir string) (bool, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return false, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("getting worktree status: %w", err)
	}

	clean := status.IsClean()
	logDebug("[git] IsClean: %v", clean)
	return clean, nil
}

// CommitPaths stages exactly the given paths (relative to the repository
// root) and creates a commit. Unrelated dirty files stay out of the commit.
// Returns the new commit hash.
func CommitPaths(dir string, paths []string, message string) (string, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	for _, p := range paths {
		if _, err := worktree.Add(p); err != nil {
			return "", fmt.Errorf("staging %s: %w", p, err)
		}
		logDebug("[git] staged %s", p)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: signature(repo),
	})
	if err != nil {
		return "", fmt.Errorf("creating commit: %w", err)
	}

	logDebug("[git] CommitPaths: committed %s", hash.String()[:8])
	return hash.String(), nil
}

// CreateTag creates an annotated tag named name at HEAD.
func CreateTag(dir, name, message string) error {
	repo, err := openRepo(dir)
	if err != nil {
		return err
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD reference: %w", err)
	}

	_, err = repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Message: message,
		Tagger:  signature(repo),
	})
	if err != nil {
		return fmt.Errorf("creating tag '%s': %w", name, err)
	}

	logDebug("[git] CreateTag: %s at %s", name, head.Hash().String()[:8])
	return nil
}

// TagExists reports whether a tag with the given name already exists.
func TagExists(dir, name string) bool {
	repo, err := openRepo(dir)
	if err != nil {
		return false
	}
	_, err = repo.Tag(name)
	return err == nil
}

// signature builds the commit/tag author from the repository configuration,
// falling back to a tool identity when none is configured.
func signature(repo *git.Repository) *object.Signature {
	name, email := "relsync", "relsync@localhost"
	if cfg, err := repo.ConfigScoped(config.GlobalScope); err == nil {
		if cfg.User.Name != "" {
			name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			email = cfg.User.Email
		}
	}
	return &object.Signature{
		Name:  name,
		Email: email,
		When:  time.Now(),
	}
}

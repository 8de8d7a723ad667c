package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/falkyre/relsync/internal/config"
	clierrors "github.com/falkyre/relsync/internal/errors"
	"github.com/falkyre/relsync/internal/git"
	"github.com/falkyre/relsync/internal/output"
	"github.com/falkyre/relsync/internal/syncer"
)

var (
	applyDryRun bool
	applyForce  bool
	applyCommit bool
	applyTag    bool
	applyYes    bool
)

// addApplyFlags registers the bump flags. The root command and the explicit
// bump alias share one flag set so both invocations behave identically.
func addApplyFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show what would change without writing")
	cmd.Flags().BoolVar(&applyForce, "force", false, "Bypass the monotonic version guard")
	cmd.Flags().BoolVar(&applyCommit, "commit", false, "Commit the rewritten files after the bump")
	cmd.Flags().BoolVar(&applyTag, "tag", false, "Create an annotated release tag after the bump")
	cmd.Flags().BoolVarP(&applyYes, "yes", "y", false, "Skip confirmation prompts")
}

func init() {
	addApplyFlags(rootCmd)
}

// runApply is the bump itself: validate the new version, rewrite every
// target in order, verify the result, then run the optional git steps.
func runApply(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return clierrors.MissingVersionArgument()
	}
	if len(args) > 1 {
		return clierrors.NewArgumentErrorWithUsage(
			fmt.Sprintf("expected one version argument, got %d", len(args)),
			"relsync <new-version>",
			"Quote the version if it contains spaces",
		)
	}
	newVersion := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Targets) == 0 {
		return clierrors.NoTargetsConfigured()
	}

	monotonic := cfg.Version.Monotonic
	if monotonic && applyForce {
		clierrors.PrintWarning("monotonic version guard bypassed with --force")
		monotonic = false
	}

	s, sch, err := buildSyncer(cfg, syncer.WithMonotonic(monotonic))
	if err != nil {
		return err
	}

	// Reject a malformed version before any file is touched.
	if err := sch.Validate(newVersion); err != nil {
		return err
	}

	doCommit := applyCommit || cfg.Git.Commit
	doTag := applyTag || cfg.Git.Tag
	doGit := (doCommit || doTag) && !applyDryRun

	// Preflight before any file is rewritten, so a refused bump leaves the
	// working tree untouched.
	if doGit {
		if err := gitPreflight(cmd, cfg, doTag, newVersion); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()

	if applyDryRun {
		results, runErr := s.Plan(newVersion)
		if len(results) > 0 {
			printResults(out, results, newVersion)
			output.PrintNotice(out, "dry run, nothing written")
		}
		return runErr
	}

	results, runErr := s.Apply(newVersion)
	if len(results) > 0 {
		printResults(out, results, newVersion)
	}
	if runErr != nil {
		return runErr
	}

	if err := s.Verify(newVersion); err != nil {
		return err
	}

	if doGit {
		return gitFinish(out, cfg, results, newVersion, doCommit, doTag)
	}
	return nil
}

// printResults prints one line per target and the run summary.
func printResults(out io.Writer, results []syncer.Result, newVersion string) {
	var applied, unchanged, failed, skipped int
	for _, res := range results {
		switch res.Status {
		case syncer.StatusApplied:
			applied++
			output.PrintApplied(out, res.Path, res.Previous, newVersion)
		case syncer.StatusUnchanged:
			unchanged++
			output.PrintUnchanged(out, res.Path, newVersion)
		case syncer.StatusFailed:
			failed++
			output.PrintFailed(out, res.Path, res.Err)
		case syncer.StatusSkipped:
			skipped++
			output.PrintSkipped(out, res.Path)
		}
	}
	output.PrintSummary(out, newVersion, applied, unchanged, failed, skipped)
}

// gitPreflight refuses a bump that would commit from a broken or dirty
// repository state.
func gitPreflight(cmd *cobra.Command, cfg *config.Configuration, doTag bool, newVersion string) error {
	dir := cfg.BaseDir
	if !git.IsRepository(dir) {
		return clierrors.GitNotRepository()
	}

	if doTag {
		name := cfg.Git.TagPrefix + newVersion
		if git.TagExists(dir, name) {
			return clierrors.NewRuntimeError(
				fmt.Sprintf("tag %s already exists", name),
				"Delete it with: git tag -d "+name,
				"Or bump to a version that has not been tagged",
			)
		}
	}

	clean, err := git.IsClean(dir)
	if err != nil {
		return clierrors.Wrap(err, clierrors.Runtime,
			"Check the repository state with: git status")
	}
	if !clean && !applyYes && !cfg.SkipConfirmations {
		if !promptYesNo(cmd, "Working tree has uncommitted changes. Commit only the synchronized files?") {
			return clierrors.GitWorkingTreeDirty()
		}
	}
	return nil
}

// gitFinish creates the release commit and tag after a verified bump.
// Failures here never undo the applied file changes.
func gitFinish(out io.Writer, cfg *config.Configuration, results []syncer.Result, newVersion string, doCommit, doTag bool) error {
	dir := cfg.BaseDir
	message := strings.ReplaceAll(cfg.Git.Message, "{version}", newVersion)

	if doCommit {
		var changed []string
		for _, res := range results {
			if res.Status == syncer.StatusApplied {
				changed = append(changed, res.Path)
			}
		}
		if len(changed) == 0 {
			output.PrintNotice(out, "no files changed, skipping release commit")
		} else {
			paths, err := repoRelative(dir, changed)
			if err != nil {
				return clierrors.Wrap(err, clierrors.Runtime)
			}
			hash, err := git.CommitPaths(dir, paths, message)
			if err != nil {
				return clierrors.WrapWithMessage(err, clierrors.Runtime,
					"release commit failed",
					"The synchronized files are already updated on disk",
					"Commit them manually with: git add -u && git commit")
			}
			output.PrintKeyValue(out, "commit", shortHash(hash)+" "+message)
		}
	}

	if doTag {
		name := cfg.Git.TagPrefix + newVersion
		if err := git.CreateTag(dir, name, message); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Runtime,
				"release tag failed",
				"The synchronized files and commit are unaffected")
		}
		output.PrintKeyValue(out, "tag", name)
	}
	return nil
}

// repoRelative rewrites config-relative target paths as repository-root
// relative, the form go-git staging requires.
func repoRelative(baseDir string, paths []string) ([]string, error) {
	root, err := git.Root(baseDir)
	if err != nil {
		return nil, err
	}
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return nil, err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	absBase, err = filepath.EvalSymlinks(absBase)
	if err != nil {
		return nil, err
	}

	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(absBase, p)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// shortHash shortens a full commit hash for display.
func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

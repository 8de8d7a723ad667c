// Package syncer implements the synchronization run: one version value
// pushed through an ordered set of targets, with validation before any file
// is touched and verification after every file is written.
//
// A run is short-lived and stateless: construct a Syncer, run it once,
// discard it. Nothing is persisted between runs.
package syncer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/falkyre/relsync/internal/errors"
	"github.com/falkyre/relsync/internal/scheme"
	"github.com/falkyre/relsync/internal/target"
)

// Status classifies the outcome of one target in a run.
type Status string

const (
	// StatusApplied means the target's marker was rewritten (or would be,
	// for a dry run).
	StatusApplied Status = "applied"
	// StatusUnchanged means the target already carried the new version and
	// no write was needed.
	StatusUnchanged Status = "unchanged"
	// StatusFailed means the target could not be read, located, or written.
	StatusFailed Status = "failed"
	// StatusSkipped means an earlier target failed and this one was never
	// attempted.
	StatusSkipped Status = "skipped"
)

// Result records the outcome for one target. One Result is produced per
// target per run; the caller decides what to log or persist.
type Result struct {
	// Path is the target path as declared in configuration.
	Path string
	// Previous is the version the marker carried before the run, when the
	// marker was located.
	Previous string
	// Status classifies the outcome.
	Status Status
	// Err is set when Status is StatusFailed.
	Err error
}

// Syncer pushes one version value through an ordered set of targets.
type Syncer struct {
	scheme    *scheme.Scheme
	targets   []*target.Target
	baseDir   string
	monotonic bool
	debug     func(format string, v ...interface{})
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithBaseDir resolves relative target paths against dir. Target paths are
// declared relative to the config file, not the working directory.
func WithBaseDir(dir string) Option {
	return func(s *Syncer) { s.baseDir = dir }
}

// WithMonotonic enables the forward-only guard: a run refuses to start when
// the new version compares lower than any parseable current value.
func WithMonotonic(on bool) Option {
	return func(s *Syncer) { s.monotonic = on }
}

// WithDebugLogger routes the syncer's debug output to fn. No debug output is
// produced when unset.
func WithDebugLogger(fn func(format string, v ...interface{})) Option {
	return func(s *Syncer) { s.debug = fn }
}

// New builds a Syncer over the given scheme and compiled targets.
func New(sch *scheme.Scheme, targets []*target.Target, opts ...Option) *Syncer {
	s := &Syncer{scheme: sch, targets: targets}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths returns the resolved filesystem path of every target, in declared
// order.
func (s *Syncer) Paths() []string {
	paths := make([]string, 0, len(s.targets))
	for _, tgt := range s.targets {
		paths = append(paths, s.resolve(tgt.Desc.Path))
	}
	return paths
}

// Apply validates newVersion and rewrites each target's marker in declared
// order. A failure stops the run: later targets are reported as skipped,
// earlier writes stay written. Each file write is independently atomic, so
// no rollback is needed or attempted.
func (s *Syncer) Apply(newVersion string) ([]Result, error) {
	return s.run(newVersion, true)
}

// Plan is Apply without the writes: the same validation, ordering, and
// Result sequence, leaving every file untouched.
func (s *Syncer) Plan(newVersion string) ([]Result, error) {
	return s.run(newVersion, false)
}

func (s *Syncer) run(newVersion string, write bool) ([]Result, error) {
	next, err := s.scheme.Parse(newVersion)
	if err != nil {
		return nil, err
	}
	if s.monotonic {
		if err := s.preflight(next); err != nil {
			return nil, err
		}
	}

	results := make([]Result, 0, len(s.targets))
	var firstErr error
	for _, tgt := range s.targets {
		if firstErr != nil {
			results = append(results, Result{Path: tgt.Desc.Path, Status: StatusSkipped})
			continue
		}
		res := s.applyOne(tgt, next.String(), write)
		if res.Err != nil {
			firstErr = res.Err
		}
		results = append(results, res)
	}
	return results, firstErr
}

// applyOne reads, rewrites, and optionally writes back a single target.
func (s *Syncer) applyOne(tgt *target.Target, newVersion string, write bool) Result {
	res := Result{Path: tgt.Desc.Path}
	path := s.resolve(tgt.Desc.Path)

	data, err := os.ReadFile(path)
	if err != nil {
		res.Status = StatusFailed
		res.Err = readError(tgt.Desc.Path, err)
		return res
	}
	content := string(data)

	marker, err := tgt.Find(content)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	res.Previous = marker.Value
	s.debugf("%s: marker on line %d, current %s", tgt.Desc.Path, marker.Line, marker.Value)

	lines := strings.Split(content, "\n")
	lines[marker.Line-1] = tgt.Rewrite(marker.Text, newVersion)
	updated := strings.Join(lines, "\n")

	if updated == content {
		res.Status = StatusUnchanged
		return res
	}
	if write {
		if err := atomicWrite(path, []byte(updated)); err != nil {
			res.Status = StatusFailed
			res.Err = errors.TargetNotWritable(tgt.Desc.Path, err)
			return res
		}
		s.debugf("%s: wrote %d bytes", tgt.Desc.Path, len(updated))
	}
	res.Status = StatusApplied
	return res
}

// preflight enforces the monotonic guard before any mutation. Current values
// the scheme cannot parse do not gate the run; drifted files are a job for
// verify, not a reason to block a bump.
func (s *Syncer) preflight(next scheme.Version) error {
	for _, tgt := range s.targets {
		data, err := os.ReadFile(s.resolve(tgt.Desc.Path))
		if err != nil {
			return readError(tgt.Desc.Path, err)
		}
		marker, err := tgt.Find(string(data))
		if err != nil {
			return err
		}
		current, err := s.scheme.Parse(marker.Value)
		if err != nil {
			continue
		}
		if next.Compare(current) < 0 {
			return errors.VersionNotMonotonic(next.String(), current.String())
		}
	}
	return nil
}

func (s *Syncer) resolve(path string) string {
	if s.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.baseDir, path)
}

func (s *Syncer) debugf(format string, v ...interface{}) {
	if s.debug != nil {
		s.debug(format, v...)
	}
}

func readError(path string, err error) *errors.CLIError {
	if os.IsNotExist(err) {
		return errors.TargetNotFound(path)
	}
	return errors.TargetNotReadable(path, err)
}

// atomicWrite replaces path via temp file + rename so the original is never
// left truncated or half-written. The original's permission bits are kept.
func atomicWrite(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

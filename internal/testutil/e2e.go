// Package testutil provides the harness for relsync end-to-end tests: a
// built binary, an isolated project directory, and helpers for seeding the
// files a run synchronizes.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"
)

var (
	// relsyncBinaryPath caches the built relsync binary path.
	relsyncBinaryPath string
	relsyncBuildOnce  sync.Once
	relsyncBuildErr   error
)

// E2EEnv is an isolated environment for one end-to-end test: a temp project
// directory the binary runs in, with HOME redirected so the developer's own
// user config never leaks into a test.
type E2EEnv struct {
	t       *testing.T
	projDir string
	homeDir string
}

// CommandResult captures the result of running a relsync command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv creates an isolated test environment and builds the binary on
// first use.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	tempDir := t.TempDir()
	env := &E2EEnv{
		t:       t,
		projDir: filepath.Join(tempDir, "project"),
		homeDir: filepath.Join(tempDir, "home"),
	}
	for _, dir := range []string{env.projDir, env.homeDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("creating %s: %v", dir, err)
		}
	}
	env.buildRelsync()
	return env
}

// Dir returns the project directory commands run in.
func (e *E2EEnv) Dir() string {
	return e.projDir
}

// WriteFile seeds a file under the project directory, creating parent
// directories as needed, and returns its absolute path.
func (e *E2EEnv) WriteFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.projDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatalf("creating directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// ReadFile reads a file under the project directory.
func (e *E2EEnv) ReadFile(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.projDir, name))
	if err != nil {
		e.t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

// WriteConfig writes a .relsync.yml into the project directory.
func (e *E2EEnv) WriteConfig(content string) {
	e.t.Helper()
	e.WriteFile(".relsync.yml", content)
}

func (e *E2EEnv) buildRelsync() {
	e.t.Helper()

	relsyncBuildOnce.Do(func() {
		relsyncBinaryPath, relsyncBuildErr = buildBinary()
	})
	if relsyncBuildErr != nil {
		e.t.Fatalf("building relsync: %v", relsyncBuildErr)
	}
}

func buildBinary() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("determining current file location")
	}
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	tmpDir, err := os.MkdirTemp("", "relsync-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}
	binaryPath := filepath.Join(tmpDir, "relsync")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/relsync")
	cmd.Dir = repoRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("building relsync: %w\nOutput: %s", err, output)
	}
	return binaryPath, nil
}

// Run executes a relsync command in the project directory.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()
	return e.RunWithEnv(nil, args...)
}

// RunWithEnv executes a relsync command with extra environment variables
// layered over the isolated environment.
func (e *E2EEnv) RunWithEnv(extra []string, args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()

	cmd := exec.Command(relsyncBinaryPath, args...)
	cmd.Dir = e.projDir
	cmd.Env = append(e.isolatedEnv(), extra...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
	}
	return result
}

// isolatedEnv redirects HOME so user-level config cannot leak into tests,
// and disables color so output assertions see plain text.
func (e *E2EEnv) isolatedEnv() []string {
	env := []string{
		"HOME=" + e.homeDir,
		"XDG_CONFIG_HOME=" + filepath.Join(e.homeDir, ".config"),
		"NO_COLOR=1",
		"PATH=" + os.Getenv("PATH"),
	}
	for _, key := range []string{"TERM", "LANG", "LC_ALL", "TMPDIR"} {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	return env
}

package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/falkyre/relsync/internal/scheme"
	"github.com/falkyre/relsync/internal/syncer"
	"github.com/falkyre/relsync/internal/target"
)

// newTestMonitor builds a Monitor over two agreeing targets in a temp dir.
func newTestMonitor(t *testing.T, opts ...Option) (*Monitor, string) {
	t.Helper()

	dir := t.TempDir()
	writeFile(t, dir, "VERSION", "2026.01.1\n")
	writeFile(t, dir, "app.yaml", "version: 2026.01.1\n")

	descs := []target.Descriptor{
		{Path: "VERSION", Kind: target.Raw},
		{Path: "app.yaml", Kind: target.Assignment, Key: "version"},
	}
	targets, err := target.CompileAll(descs)
	if err != nil {
		t.Fatalf("CompileAll() error: %v", err)
	}

	s := syncer.New(scheme.Default(), targets, syncer.WithBaseDir(dir))
	return NewMonitor(s, opts...), dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestNewMonitor(t *testing.T) {
	tests := map[string]struct {
		opts         []Option
		wantInterval time.Duration
	}{
		"creates monitor with defaults": {
			opts:         nil,
			wantInterval: 2 * time.Second,
		},
		"creates monitor with custom interval": {
			opts:         []Option{WithInterval(5 * time.Second)},
			wantInterval: 5 * time.Second,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m, dir := newTestMonitor(t, tc.opts...)

			if m == nil {
				t.Fatal("NewMonitor() returned nil")
			}
			if m.interval != tc.wantInterval {
				t.Errorf("interval = %v, want %v", m.interval, tc.wantInterval)
			}
			if len(m.paths) != 2 {
				t.Fatalf("got %d paths, want 2", len(m.paths))
			}
			if m.paths[0] != filepath.Join(dir, "VERSION") {
				t.Errorf("paths[0] = %q, want resolved VERSION path", m.paths[0])
			}
		})
	}
}

func TestWithOutput(t *testing.T) {
	var buf bytes.Buffer
	m, _ := newTestMonitor(t, WithOutput(&buf))

	if m.out != &buf {
		t.Error("WithOutput did not set custom writer")
	}
}

func TestStatusLine(t *testing.T) {
	tests := map[string]struct {
		readings     []syncer.Reading
		version      string
		agree        bool
		wantContains []string
	}{
		"no targets": {
			readings:     nil,
			wantContains: []string{"no targets configured"},
		},
		"all targets agree": {
			readings: []syncer.Reading{
				{Path: "VERSION", Value: "2026.01.1"},
				{Path: "app.yaml", Value: "2026.01.1"},
			},
			version:      "2026.01.1",
			agree:        true,
			wantContains: []string{"2 targets", "2026.01.1"},
		},
		"values drifted": {
			readings: []syncer.Reading{
				{Path: "VERSION", Value: "2026.01.1"},
				{Path: "app.yaml", Value: "2026.01.2"},
			},
			wantContains: []string{"drift", "VERSION=2026.01.1", "app.yaml=2026.01.2"},
		},
		"read failure": {
			readings: []syncer.Reading{
				{Path: "VERSION", Err: os.ErrNotExist},
			},
			wantContains: []string{"drift", "VERSION", "file does not exist"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result := statusLine(tc.readings, tc.version, tc.agree)

			for _, want := range tc.wantContains {
				if !strings.Contains(result, want) {
					t.Errorf("statusLine() = %q, missing %q", result, want)
				}
			}
		})
	}
}

func TestRelevant(t *testing.T) {
	m, dir := newTestMonitor(t)

	tests := map[string]struct {
		event fsnotify.Event
		want  bool
	}{
		"write to target": {
			event: fsnotify.Event{Name: filepath.Join(dir, "VERSION"), Op: fsnotify.Write},
			want:  true,
		},
		"create from atomic rename": {
			event: fsnotify.Event{Name: filepath.Join(dir, "app.yaml"), Op: fsnotify.Create},
			want:  true,
		},
		"rename of target": {
			event: fsnotify.Event{Name: filepath.Join(dir, "VERSION"), Op: fsnotify.Rename},
			want:  true,
		},
		"chmod only": {
			event: fsnotify.Event{Name: filepath.Join(dir, "VERSION"), Op: fsnotify.Chmod},
			want:  false,
		},
		"unrelated file": {
			event: fsnotify.Event{Name: filepath.Join(dir, "other.txt"), Op: fsnotify.Write},
			want:  false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := m.relevant(tc.event); got != tc.want {
				t.Errorf("relevant(%v) = %v, want %v", tc.event, got, tc.want)
			}
		})
	}
}

func TestReportDeduplicates(t *testing.T) {
	var buf bytes.Buffer
	m, dir := newTestMonitor(t, WithOutput(&buf))

	m.report()
	m.report()

	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("got %d lines after duplicate reports, want 1", got)
	}

	// A drifted file produces a new line.
	writeFile(t, dir, "VERSION", "2026.02.1\n")
	m.report()

	output := buf.String()
	if got := strings.Count(output, "\n"); got != 2 {
		t.Errorf("got %d lines after drift, want 2", got)
	}
	if !strings.Contains(output, "drift") {
		t.Errorf("output missing drift report:\n%s", output)
	}
}

func TestWatchContextCancellation(t *testing.T) {
	var buf bytes.Buffer
	m, _ := newTestMonitor(t, WithOutput(&buf), WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- m.Watch(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error: %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Error("Watch() did not exit after context cancellation")
	}
}

func TestWatchReportsDrift(t *testing.T) {
	var buf bytes.Buffer
	m, dir := newTestMonitor(t, WithOutput(&buf), WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- m.Watch(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	writeFile(t, dir, "app.yaml", "version: 2026.02.1\n")
	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch() error: %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Watch() did not exit after context cancellation")
	}

	output := buf.String()
	if !strings.Contains(output, "watching 2 targets") {
		t.Errorf("output missing session separator:\n%s", output)
	}
	if !strings.Contains(output, "2 targets at 2026.01.1") {
		t.Errorf("output missing initial agreement line:\n%s", output)
	}
	if !strings.Contains(output, "drift") {
		t.Errorf("output missing drift line:\n%s", output)
	}
}

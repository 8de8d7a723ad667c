// Package watch implements live drift monitoring: the configured target
// files are observed on disk and the agreement state is reported whenever
// it changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"

	"github.com/falkyre/relsync/internal/output"
	"github.com/falkyre/relsync/internal/syncer"
)

// Monitor watches the target files and prints a status line whenever the
// observed version state changes. It manages terminal state and handles
// keyboard input for clean exit.
type Monitor struct {
	syncer    *syncer.Syncer
	paths     []string
	interval  time.Duration
	out       io.Writer
	mu        sync.Mutex
	lastLine  string
	oldState  *term.State
	isRawMode bool
	stdinFd   int
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithOutput sets the output writer for status lines.
func WithOutput(w io.Writer) Option {
	return func(m *Monitor) {
		m.out = w
	}
}

// WithInterval sets the fallback polling interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.interval = d
	}
}

// NewMonitor creates a Monitor over the syncer's targets.
func NewMonitor(s *syncer.Syncer, opts ...Option) *Monitor {
	m := &Monitor{
		syncer:   s,
		interval: 2 * time.Second,
		out:      os.Stdout,
		stdinFd:  int(os.Stdin.Fd()),
	}
	for _, p := range s.Paths() {
		m.paths = append(m.paths, filepath.Clean(p))
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Watch starts the live drift display.
// Returns when the user presses 'q', Ctrl+C, or the context is cancelled.
func (m *Monitor) Watch(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch parent directories rather than the files themselves so the
	// rename step of an atomic write is still observed.
	seen := map[string]bool{}
	for _, p := range m.paths {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	// Set up signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Start keyboard listener
	keyCh := m.startKeyboardListener(ctx)

	output.PrintSeparator(m.out, fmt.Sprintf("watching %d targets", len(m.paths)))

	// Initial report
	m.report()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	return m.watchLoop(ctx, watcher, ticker.C, keyCh, sigCh)
}

// watchLoop is the main event loop for the monitor.
func (m *Monitor) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, tickCh <-chan time.Time, keyCh <-chan byte, sigCh <-chan os.Signal) error {
	for {
		select {
		case <-ctx.Done():
			m.restoreTerminal()
			return nil
		case <-sigCh:
			m.restoreTerminal()
			return nil
		case key := <-keyCh:
			if key == 'q' || key == 'Q' || key == 3 { // 3 = Ctrl+C
				m.restoreTerminal()
				return nil
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if m.relevant(event) {
				m.report()
			}
		case <-tickCh:
			m.report()
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Polling covers the reads when event delivery fails.
		}
	}
}

// relevant reports whether the event touches one of the target files.
func (m *Monitor) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Clean(event.Name)
	for _, p := range m.paths {
		if name == p {
			return true
		}
	}
	return false
}

// report reads every target and prints the agreement state. Consecutive
// identical states are not repeated.
func (m *Monitor) report() {
	m.mu.Lock()
	defer m.mu.Unlock()

	readings, version, agree := m.syncer.Current()
	line := statusLine(readings, version, agree)
	if line == m.lastLine {
		return
	}
	m.lastLine = line

	stamp := color.New(color.Faint).Sprint(time.Now().Format("15:04:05"))
	fmt.Fprintf(m.out, "%s %s\n", stamp, line)
}

// statusLine formats one status line for the current readings.
func statusLine(readings []syncer.Reading, version string, agree bool) string {
	if len(readings) == 0 {
		return color.YellowString("no targets configured")
	}
	if agree {
		return fmt.Sprintf("%s %d targets at %s", color.GreenString("✓"), len(readings), color.CyanString(version))
	}

	parts := make([]string, 0, len(readings))
	for _, r := range readings {
		if r.Err != nil {
			parts = append(parts, fmt.Sprintf("%s: %v", r.Path, r.Err))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", r.Path, r.Value))
	}
	return fmt.Sprintf("%s drift: %s", color.RedString("✗"), strings.Join(parts, ", "))
}

// startKeyboardListener starts a goroutine that listens for keyboard input.
// Returns a channel that receives key presses.
func (m *Monitor) startKeyboardListener(ctx context.Context) <-chan byte {
	keyCh := make(chan byte, 1)

	// Only enable raw mode if stdout is a terminal
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return keyCh
	}

	go m.keyboardLoop(ctx, keyCh)

	return keyCh
}

// keyboardLoop reads keyboard input in raw mode.
func (m *Monitor) keyboardLoop(ctx context.Context, keyCh chan<- byte) {
	// Put terminal in raw mode for immediate key detection
	oldState, err := term.MakeRaw(m.stdinFd)
	if err != nil {
		return
	}

	m.mu.Lock()
	m.oldState = oldState
	m.isRawMode = true
	m.mu.Unlock()

	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				continue
			}
			select {
			case keyCh <- buf[0]:
			default:
			}
		}
	}
}

// restoreTerminal restores the terminal to its original state.
func (m *Monitor) restoreTerminal() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRawMode && m.oldState != nil {
		term.Restore(m.stdinFd, m.oldState)
		m.isRawMode = false
	}
}

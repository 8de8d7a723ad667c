// Package output provides terminal output formatting for the relsync CLI.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintSeparator prints a dim horizontal rule with a centered label.
func PrintSeparator(out io.Writer, label string) {
	termWidth := GetTerminalWidth()
	faint := color.New(color.FgMagenta, color.Faint).SprintFunc()

	label = " " + label + " "
	lineLen := (termWidth - len(label)) / 2
	if lineLen < 3 {
		lineLen = 3
	}

	line := strings.Repeat("─", lineLen)
	fmt.Fprintf(out, "\n%s%s%s\n", faint(line), faint(label), faint(line))
}

// PrintApplied prints a green result line for a rewritten file.
// Shows the previous and new version side by side.
func PrintApplied(out io.Writer, path, previous, next string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s %s\n", green("✓"), cyan(path), dim(previous+" → "+next))
}

// PrintUnchanged prints a faint result line for a file already at the version.
func PrintUnchanged(out io.Writer, path, version string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s\n", dim("· "+path+" already at "+version))
}

// PrintFailed prints a red result line for a file that could not be updated.
func PrintFailed(out io.Writer, path string, err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s %s: %v\n", red("✗"), cyan(path), err)
}

// PrintSkipped prints a faint result line for a file left untouched after an
// earlier failure stopped the run.
func PrintSkipped(out io.Writer, path string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s\n", dim("· "+path+" skipped"))
}

// PrintSummary prints the one-line outcome of a synchronization run.
func PrintSummary(out io.Writer, version string, applied, unchanged, failed, skipped int) {
	var parts []string
	if applied > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", applied))
	}
	if unchanged > 0 {
		parts = append(parts, fmt.Sprintf("%d unchanged", unchanged))
	}
	if failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", failed))
	}
	if skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", skipped))
	}

	if failed > 0 {
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(out, "\n%s %s\n", red("✗"), strings.Join(parts, ", "))
		return
	}
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "\n%s %s (%s)\n", green("✓"), version, strings.Join(parts, ", "))
}

// PrintDrift prints a red line for a target that disagrees with the expected
// version.
func PrintDrift(out io.Writer, path, want, got string) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s %s reads %s, expected %s\n", red("✗"), cyan(path), got, want)
}

// PrintInSync prints the green confirmation that every target agrees.
func PrintInSync(out io.Writer, count int, version string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s in sync at %s\n", green("✓"), plural(count, "target"), version)
}

// PrintFetched prints a green result line for a downloaded asset.
func PrintFetched(out io.Writer, path string, bytes int64) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s %s\n", green("✓"), cyan(path), dim(formatBytes(bytes)))
}

// PrintKeyValue prints a cyan key with its value.
func PrintKeyValue(out io.Writer, key, value string) {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", cyan(key+":"), value)
}

// PrintHeading prints a bold section heading.
func PrintHeading(out io.Writer, text string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s\n", bold(text))
}

// PrintNotice prints a yellow informational line.
func PrintNotice(out io.Writer, message string) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(out, "%s\n", yellow(message))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// formatBytes renders a byte count in a compact human form.
func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

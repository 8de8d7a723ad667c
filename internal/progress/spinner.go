package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner shows activity during long-running operations. On a TTY it
// animates; otherwise it degrades to plain line output so logs stay clean.
type Spinner struct {
	spin    *spinner.Spinner
	symbols ProgressSymbols
	out     io.Writer
	enabled bool
}

// NewSpinner creates a spinner writing to out. The animation is only
// enabled when stdout is a terminal.
func NewSpinner(out io.Writer) *Spinner {
	caps := DetectTerminalCapabilities()
	symbols := SelectSymbols(caps)

	s := spinner.New(spinner.CharSets[symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(out))

	return &Spinner{
		spin:    s,
		symbols: symbols,
		out:     out,
		enabled: caps.IsTTY,
	}
}

// Start begins the animation with the given message.
func (s *Spinner) Start(message string) {
	if !s.enabled {
		fmt.Fprintf(s.out, "%s...\n", message)
		return
	}
	s.spin.Suffix = " " + message
	s.spin.Start()
}

// Succeed stops the spinner and prints a success line.
func (s *Spinner) Succeed(message string) {
	s.finish(color.GreenString(s.symbols.Checkmark), message)
}

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail(message string) {
	s.finish(color.RedString(s.symbols.Failure), message)
}

// Stop halts the animation without printing a final line.
func (s *Spinner) Stop() {
	if s.enabled {
		s.spin.Stop()
	}
}

func (s *Spinner) finish(symbol, message string) {
	if !s.enabled {
		fmt.Fprintf(s.out, "%s %s\n", symbol, message)
		return
	}
	s.spin.FinalMSG = fmt.Sprintf("%s %s\n", symbol, message)
	s.spin.Stop()
}

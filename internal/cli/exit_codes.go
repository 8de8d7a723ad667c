package cli

import (
	stderrors "errors"

	clierrors "github.com/falkyre/relsync/internal/errors"
)

// Exit codes returned by the relsync binary. Scripts branch on these, so the
// values are part of the CLI contract.
const (
	// ExitSuccess means the command completed without error.
	ExitSuccess = 0
	// ExitUsage covers bad invocations: missing or malformed arguments, a
	// version the grammar rejects, and monotonic refusals.
	ExitUsage = 1
	// ExitApply means a target could not be read, located, or rewritten.
	ExitApply = 2
	// ExitVerify means targets disagree: post-write verification failed or
	// drift was detected.
	ExitVerify = 3
	// ExitConfig means the configuration could not be loaded or is invalid.
	ExitConfig = 4
)

// ExitCode maps an error returned by Execute to the binary's exit code.
// Aggregated errors take the code of their first structured failure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cliErr *clierrors.CLIError
	if stderrors.As(err, &cliErr) {
		switch cliErr.Category {
		case clierrors.Argument, clierrors.Format:
			return ExitUsage
		case clierrors.Marker, clierrors.IO, clierrors.Runtime:
			return ExitApply
		case clierrors.Verification:
			return ExitVerify
		case clierrors.Configuration:
			return ExitConfig
		}
	}
	return ExitUsage
}

package cli

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/falkyre/relsync/internal/assets"
	clierrors "github.com/falkyre/relsync/internal/errors"
	"github.com/falkyre/relsync/internal/output"
	"github.com/falkyre/relsync/internal/progress"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the version-pinned static assets",
	Long: `Fetch downloads every asset declared in configuration: fixed URL to path
pairs, pinned to specific upstream versions. Downloads run concurrently up
to fetch.concurrency, each file is verified against its sha256 pin when one
is declared, and files are written atomically.

A failed asset does not stop the others; every result is reported.`,
	Example: `  relsync fetch`,
	Args:    cobra.NoArgs,
	GroupID: GroupRelease,
	RunE:    runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(cfg.Assets) == 0 {
		output.PrintNotice(out, "no assets configured, nothing to fetch")
		return nil
	}

	fetcher := assets.NewFetcher(
		assets.WithConcurrency(cfg.Fetch.Concurrency),
		assets.WithBaseDir(cfg.BaseDir),
	)

	spin := progress.NewSpinner(out)
	spin.Start(fmt.Sprintf("Fetching %d assets", len(cfg.Assets)))
	results := fetcher.Fetch(cmd.Context(), cfg.Assets)
	spin.Stop()

	var merr *multierror.Error
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			merr = multierror.Append(merr, res.Err)
			output.PrintFailed(out, res.Asset.Path, res.Err)
			continue
		}
		output.PrintFetched(out, res.Asset.Path, res.Bytes)
	}

	if failed > 0 {
		return clierrors.NewRuntimeError(
			fmt.Sprintf("%d of %d assets failed: %v", failed, len(results), merr.ErrorOrNil()),
			"Rerun 'relsync fetch' once the upstream is reachable",
			"Assets that succeeded are already on disk",
		)
	}
	return nil
}

package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/falkyre/relsync/internal/errors"
)

// Fetch downloads every asset, at most the configured number in flight at a
// time. One Result is returned per asset, in declaration order; a failed
// asset never takes the others down with it. Cancelling the context stops
// downloads that have not started.
func (f *Fetcher) Fetch(ctx context.Context, list []Asset) []Result {
	results := make([]Result, len(list))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, asset := range list {
		results[i].Asset = asset
		g.Go(func() error {
			n, err := f.fetchOne(ctx, asset)
			results[i].Bytes = n
			results[i].Err = err
			// Failures land in the Result; returning nil keeps the
			// remaining downloads running.
			return nil
		})
	}
	g.Wait()

	return results
}

// fetchOne downloads a single asset into memory, verifies the digest pin,
// and writes the file atomically.
func (f *Fetcher) fetchOne(ctx context.Context, asset Asset) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return 0, errors.FetchFailed(asset.URL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, errors.FetchFailed(asset.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.FetchFailed(asset.URL, fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.FetchFailed(asset.URL, err)
	}

	if asset.SHA256 != "" {
		got := digest(data)
		want := strings.ToLower(asset.SHA256)
		if got != want {
			return 0, errors.ChecksumMismatch(asset.Path, want, got)
		}
	}

	if err := atomicWrite(f.resolve(asset.Path), data); err != nil {
		return 0, errors.AssetNotWritable(asset.Path, err)
	}
	return int64(len(data)), nil
}

// Package assets downloads the version-pinned static files a release ships
// with: fixed URL to path pairs, fetched concurrently, verified against an
// optional sha256 pin, and written atomically so an interrupted download
// never leaves a half-written file in place.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Asset is one pinned download, as declared in configuration.
type Asset struct {
	// URL is the upstream location, pinned to a specific version.
	URL string `koanf:"url" validate:"required,url"`
	// Path is where the file lands, relative to the config file's directory.
	Path string `koanf:"path" validate:"required"`
	// SHA256 is an optional integrity pin (lowercase hex). When set, a
	// download whose digest disagrees is discarded.
	SHA256 string `koanf:"sha256"`
}

// Result records the outcome of one asset download.
type Result struct {
	// Asset is the declaration that produced this result.
	Asset Asset
	// Bytes is the downloaded size on success.
	Bytes int64
	// Err is set when the download or verification failed.
	Err error
}

// Fetcher downloads pinned assets with bounded concurrency.
type Fetcher struct {
	client      *http.Client
	concurrency int
	baseDir     string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client (used by tests).
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithConcurrency bounds the number of parallel downloads.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n >= 1 {
			f.concurrency = n
		}
	}
}

// WithBaseDir resolves relative asset paths against dir.
func WithBaseDir(dir string) Option {
	return func(f *Fetcher) { f.baseDir = dir }
}

// NewFetcher creates a Fetcher. Default concurrency is 4.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: 2 * time.Minute},
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// digest returns the lowercase hex sha256 of data.
func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (f *Fetcher) resolve(path string) string {
	if f.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.baseDir, path)
}

// atomicWrite writes data via temp file + rename, creating parent
// directories as needed.
func atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

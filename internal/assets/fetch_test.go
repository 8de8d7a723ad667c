package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falkyre/relsync/internal/errors"
)

func sha256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestFetchDownloadsAllAssets(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/xterm.min.js":
			w.Write([]byte("console.log('xterm')"))
		case "/xterm.css":
			w.Write([]byte(".xterm {}"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(WithBaseDir(dir), WithConcurrency(2))

	results := f.Fetch(context.Background(), []Asset{
		{URL: srv.URL + "/xterm.min.js", Path: "web/static/js/xterm.min.js"},
		{URL: srv.URL + "/xterm.css", Path: "web/static/css/xterm.css"},
	})

	require.Len(t, results, 2)
	for _, res := range results {
		assert.NoError(t, res.Err, "asset %s", res.Asset.URL)
		assert.Positive(t, res.Bytes)
	}

	js, err := os.ReadFile(filepath.Join(dir, "web/static/js/xterm.min.js"))
	require.NoError(t, err)
	assert.Equal(t, "console.log('xterm')", string(js))
}

func TestFetchVerifiesDigestPin(t *testing.T) {
	t.Parallel()

	const body = "pinned content"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(WithBaseDir(dir))

	t.Run("matching pin passes", func(t *testing.T) {
		results := f.Fetch(context.Background(), []Asset{
			{URL: srv.URL, Path: "ok.js", SHA256: sha256Hex(body)},
		})
		require.NoError(t, results[0].Err)
	})

	t.Run("uppercase pin accepted", func(t *testing.T) {
		results := f.Fetch(context.Background(), []Asset{
			{URL: srv.URL, Path: "ok2.js", SHA256: strings.ToUpper(sha256Hex(body))},
		})
		require.NoError(t, results[0].Err)
	})

	t.Run("mismatched pin fails without writing", func(t *testing.T) {
		results := f.Fetch(context.Background(), []Asset{
			{URL: srv.URL, Path: "bad.js", SHA256: sha256Hex("something else")},
		})
		require.Error(t, results[0].Err)
		assert.Contains(t, results[0].Err.Error(), "checksum mismatch")
		_, err := os.Stat(filepath.Join(dir, "bad.js"))
		assert.True(t, os.IsNotExist(err), "a failed pin must not leave a file behind")
	})
}

func TestFetchFailureIsolatedPerAsset(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.js" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(WithBaseDir(dir))

	results := f.Fetch(context.Background(), []Asset{
		{URL: srv.URL + "/missing.js", Path: "missing.js"},
		{URL: srv.URL + "/present.js", Path: "present.js"},
	})

	require.Len(t, results, 2)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "404")
	assert.NoError(t, results[1].Err, "one failed asset must not take the others down")
}

func TestFetchRespectsConcurrencyLimit(t *testing.T) {
	t.Parallel()

	var inFlight, peak int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(WithBaseDir(dir), WithConcurrency(2))

	list := make([]Asset, 6)
	for i := range list {
		list[i] = Asset{URL: srv.URL, Path: filepath.Join("out", string(rune('a'+i)))}
	}

	results := f.Fetch(context.Background(), list)
	for _, res := range results {
		require.NoError(t, res.Err)
	}
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2),
		"no more than the configured number of downloads may run at once")
}

func TestFetchReportsUnwritableDestination(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	// A regular file where the destination directory should go.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocker"), []byte("x"), 0o644))

	f := NewFetcher(WithBaseDir(dir))
	results := f.Fetch(context.Background(), []Asset{
		{URL: srv.URL, Path: "blocker/a.js"},
	})

	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "cannot write asset")
	cliErr := errors.AsCLIError(results[0].Err)
	require.NotNil(t, cliErr)
	assert.Equal(t, errors.IO, cliErr.Category)
}

func TestFetchLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(WithBaseDir(dir))

	results := f.Fetch(context.Background(), []Asset{{URL: srv.URL, Path: "a.js"}})
	require.NoError(t, results[0].Err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docrefactor/internal/config"
	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/metrics"
)

// FileFetcher reads file: URLs from disk. A directory resolves to its index.html.
type FileFetcher struct {
	maxBody  int64
	recorder metrics.Recorder
}

// NewFileFetcher creates a FileFetcher with the given body limit (0 uses the default).
func NewFileFetcher(maxBody int64, recorder metrics.Recorder) *FileFetcher {
	if maxBody <= 0 {
		maxBody = config.DefaultMaxBodyBytes
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &FileFetcher{maxBody: maxBody, recorder: recorder}
}

// FileURL converts a filesystem path into an absolute file: URL.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Fetch implements Fetcher.
func (f *FileFetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := f.read(pageURL)
	f.recorder.ObserveFetchDuration("file", time.Since(start), err == nil)
	return resp, err
}

func (f *FileFetcher) read(pageURL string) (*Response, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme != "file" {
		return nil, derrors.FetchFailed(pageURL, errors.New("not a file URL"))
	}
	path := filepath.FromSlash(u.Path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, derrors.FetchFailed(pageURL, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, "index.html")
		u.Path += "/index.html"
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, derrors.FetchFailed(pageURL, err)
	}
	defer func() {
		_ = file.Close() // Ignore close errors on read-only operation
	}()

	data, err := io.ReadAll(io.LimitReader(file, f.maxBody+1))
	if err != nil {
		return nil, derrors.FetchFailed(pageURL, fmt.Errorf("read file: %w", err))
	}
	if int64(len(data)) > f.maxBody {
		return nil, derrors.FetchFailed(pageURL, errors.New("file too large"))
	}
	u.Fragment = ""
	u.RawQuery = ""
	return &Response{URL: u.String(), Body: data}, nil
}

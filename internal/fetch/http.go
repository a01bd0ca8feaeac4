package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docrefactor/internal/config"
	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/logfields"
	"git.home.luguber.info/inful/docrefactor/internal/metrics"
	"git.home.luguber.info/inful/docrefactor/internal/retry"
)

// HTTPFetcher fetches pages over HTTP(S) with bounded redirects, a body size limit and retries.
type HTTPFetcher struct {
	client    *http.Client
	policy    retry.Policy
	maxBody   int64
	userAgent string
	recorder  metrics.Recorder
}

// NewHTTPClient creates an HTTP client that follows at most maxRedirects redirects.
func NewHTTPClient(timeout time.Duration, maxRedirects int, allowCrossHost bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) == 0 {
				return nil
			}
			if !allowCrossHost && req.URL.Host != via[0].URL.Host {
				return errors.New("redirect to different host blocked")
			}
			if len(via) > maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// NewHTTPFetcher builds a fetcher from the fetch configuration section.
func NewHTTPFetcher(cfg config.FetchConfig, recorder metrics.Recorder) *HTTPFetcher {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = config.DefaultMaxRedirects
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = config.DefaultMaxBodyBytes
	}
	return &HTTPFetcher{
		client:    NewHTTPClient(config.Duration(cfg.Timeout, 10*time.Second), maxRedirects, cfg.AllowCrossHost),
		policy:    retry.FromConfig(cfg.Retry),
		maxBody:   maxBody,
		userAgent: cfg.UserAgent,
		recorder:  recorder,
	}
}

// WithClient replaces the underlying client (tests use httptest clients).
func (f *HTTPFetcher) WithClient(c *http.Client) *HTTPFetcher {
	f.client = c
	return f
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	var resp *Response
	start := time.Now()
	err := f.policy.Do(ctx, func() error {
		var err error
		resp, err = f.fetchOnce(ctx, pageURL)
		return err
	}, func(attempt int, err error) {
		f.recorder.IncFetchRetry("http")
		slog.Debug("Retrying fetch", logfields.URL(pageURL), logfields.Attempt(attempt), logfields.Error(err))
	})
	f.recorder.ObserveFetchDuration("http", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, pageURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, derrors.FetchFailed(pageURL, fmt.Errorf("build request: %w", err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html")

	httpResp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, derrors.FetchTransient(pageURL, err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	if httpResp.StatusCode >= 500 {
		_, _ = io.Copy(io.Discard, httpResp.Body)
		return nil, derrors.FetchTransient(pageURL, fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, httpResp.Status))
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, httpResp.Body)
		return nil, derrors.FetchFailed(pageURL, fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, httpResp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, f.maxBody+1))
	if err != nil {
		return nil, derrors.FetchTransient(pageURL, fmt.Errorf("read response: %w", err))
	}
	if int64(len(data)) > f.maxBody {
		return nil, derrors.FetchFailed(pageURL, errors.New("response too large"))
	}
	return &Response{URL: httpResp.Request.URL.String(), Body: data}, nil
}
